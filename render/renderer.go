// Package render drives frames through a gpu.Device: it owns the frame slots
// and their synchronization objects, the swapchain and everything built on it,
// and the registry of models to draw.
//
// A Renderer is used from a single goroutine. The only concurrency is with the
// GPU and it is expressed through fences and semaphores.
package render

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/vengine/asset"
	"github.com/plus3/vengine/ecs"
	"github.com/plus3/vengine/gpu"
	"go.uber.org/zap"
)

// Window is the presentation surface plus the ability to wait for platform
// events while it is minimized.
type Window interface {
	gpu.Surface
	// WaitEvents blocks until the platform delivers at least one event.
	WaitEvents()
}

// Stats counts renderer activity.
type Stats struct {
	FramesSubmitted uint64
	// FramesDropped counts frames abandoned because the swapchain was stale
	// when the image was acquired.
	FramesDropped  uint64
	Refreshes      uint64
	Rerecords      uint64
	Models         int
	Extent         gpu.Extent
	ImageCount     int
	FramesInFlight int
	CurrentFrame   int
}

// frameSync is one in-flight frame slot.
type frameSync struct {
	imageAvailable gpu.Semaphore
	renderFinished gpu.Semaphore
	inFlight       gpu.Fence
}

type Renderer struct {
	device gpu.Device
	window Window
	log    *zap.Logger
	opts   Options

	frames  []frameSync
	current int
	chain   *swapchain

	models *intmap.Map[ecs.EntityId, *asset.Model]
	// dirty is set whenever the command buffers no longer match models.
	dirty   bool
	resized bool

	start time.Time
	stats Stats
}

// New creates the frame slots, builds the swapchain for the window's current
// size and records empty command buffers.
func New(device gpu.Device, window Window, opts Options, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts.applyDefaults()

	r := &Renderer{
		device: device,
		window: window,
		log:    log,
		opts:   opts,
		models: intmap.New[ecs.EntityId, *asset.Model](64),
		start:  time.Now(),
	}

	if err := r.createSyncObjects(); err != nil {
		r.destroySyncObjects()
		return nil, err
	}

	chain, err := r.buildSwapchain(r.waitForSurface())
	if err != nil {
		r.destroySyncObjects()
		return nil, err
	}
	r.chain = chain

	if err := r.UpdateCommandBuffers(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) createSyncObjects() error {
	r.frames = make([]frameSync, r.opts.FramesInFlight)
	for i := range r.frames {
		f := &r.frames[i]
		var err error
		if f.imageAvailable, err = r.device.CreateSemaphore(); err != nil {
			return r.fail("create image available semaphore", err)
		}
		if f.renderFinished, err = r.device.CreateSemaphore(); err != nil {
			return r.fail("create render finished semaphore", err)
		}
		// Signaled so the first wait on each slot returns immediately.
		if f.inFlight, err = r.device.CreateFence(true); err != nil {
			return r.fail("create in flight fence", err)
		}
	}
	return nil
}

func (r *Renderer) destroySyncObjects() {
	for _, f := range r.frames {
		r.device.DestroySemaphore(f.imageAvailable)
		r.device.DestroySemaphore(f.renderFinished)
		r.device.DestroyFence(f.inFlight)
	}
	r.frames = nil
}

// Device returns the device the renderer draws with.
func (r *Renderer) Device() gpu.Device {
	return r.device
}

// AddModel registers m to be drawn for id, replacing any model registered
// earlier, and marks the command buffers dirty.
func (r *Renderer) AddModel(id ecs.EntityId, m *asset.Model) {
	r.models.Put(id, m)
	r.dirty = true
}

// RemoveModel unregisters the model drawn for id and marks the command
// buffers dirty. The caller owns the returned model.
func (r *Renderer) RemoveModel(id ecs.EntityId) (*asset.Model, bool) {
	m, ok := r.models.Get(id)
	if !ok {
		return nil, false
	}
	r.models.Del(id)
	r.dirty = true
	return m, true
}

// Model returns the model registered for id, or nil.
func (r *Renderer) Model(id ecs.EntityId) *asset.Model {
	m, _ := r.models.Get(id)
	return m
}

// ModelIds returns the registered ids in draw order.
func (r *Renderer) ModelIds() []ecs.EntityId {
	ids := make([]ecs.EntityId, 0, r.models.Len())
	r.models.ForEach(func(id ecs.EntityId, _ *asset.Model) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// SceneChanged marks the command buffers dirty.
func (r *Renderer) SceneChanged() {
	r.dirty = true
}

// Dirty reports whether the command buffers must be re-recorded before they
// match the model registry.
func (r *Renderer) Dirty() bool {
	return r.dirty
}

// NotifyResized tells the renderer the window's framebuffer changed size. The
// swapchain is rebuilt after the next present.
func (r *Renderer) NotifyResized() {
	r.resized = true
}

// WaitIdle blocks until the GPU has finished all submitted work.
func (r *Renderer) WaitIdle() error {
	if err := r.device.WaitIdle(); err != nil {
		return r.fail("wait idle", err)
	}
	return nil
}

// UpdateCommandBuffers re-records the command buffer of every swapchain image
// so it draws every registered model. Models are drawn in ascending entity id
// order, which makes the draw order deterministic.
func (r *Renderer) UpdateCommandBuffers() error {
	if r.chain == nil {
		return errors.New("update command buffers: renderer has no swapchain")
	}
	// Command buffers of frames still in flight cannot be reset.
	if err := r.WaitIdle(); err != nil {
		return err
	}

	ids := r.ModelIds()
	sc := r.chain
	clearValue := gpu.ClearValue{Color: r.opts.ClearColor, Depth: 1}

	for i, cb := range sc.commandBuffers {
		if err := r.device.ResetCommandBuffer(cb); err != nil {
			return r.fail("reset command buffer", err)
		}
		if err := r.device.BeginCommandBuffer(cb); err != nil {
			return r.fail("begin command buffer", err)
		}

		r.device.CmdBeginRenderPass(cb, gpu.RenderPassBeginInfo{
			RenderPass:  sc.renderPass,
			Framebuffer: sc.framebuffers[i],
			Extent:      sc.extent,
			Clear:       clearValue,
		})
		r.device.CmdBindDescriptorSet(cb, sc.descriptorSets[i])
		for _, id := range ids {
			m, _ := r.models.Get(id)
			r.device.CmdBindPipeline(cb, sc.pipeline)
			r.device.CmdBindVertexBuffer(cb, m.VertexBuffer)
			r.device.CmdBindIndexBuffer(cb, m.IndexBuffer)
			r.device.CmdDrawIndexed(cb, m.IndexCount)
		}
		r.device.CmdEndRenderPass(cb)

		if err := r.device.EndCommandBuffer(cb); err != nil {
			return r.fail("record command buffer", err)
		}
	}

	r.dirty = false
	r.stats.Rerecords++
	return nil
}

// DrawFrame renders and presents one frame using the current frame slot.
//
// A stale swapchain at acquire time rebuilds it and drops the frame. A stale
// or suboptimal swapchain at present time, or a pending resize, rebuilds it
// after presenting. Every other device error is returned as fatal.
func (r *Renderer) DrawFrame() error {
	if r.chain == nil {
		return errors.New("draw frame: renderer has no swapchain")
	}
	slot := r.frames[r.current]

	if err := r.device.WaitForFence(slot.inFlight, r.opts.FenceTimeout); err != nil {
		return r.fail("wait for frame fence", err)
	}

	imageIndex, _, err := r.device.AcquireNextImage(r.chain.handle, slot.imageAvailable)
	if gpu.IsStale(err) {
		r.stats.FramesDropped++
		return r.Refresh()
	} else if err != nil {
		return r.fail("acquire swapchain image", err)
	}

	if err := r.updateUniforms(imageIndex); err != nil {
		return err
	}

	if err := r.device.ResetFence(slot.inFlight); err != nil {
		return r.fail("reset frame fence", err)
	}
	if err := r.device.QueueSubmit(gpu.SubmitInfo{
		WaitSemaphores:   []gpu.Semaphore{slot.imageAvailable},
		CommandBuffers:   []gpu.CommandBuffer{r.chain.commandBuffers[imageIndex]},
		SignalSemaphores: []gpu.Semaphore{slot.renderFinished},
	}, slot.inFlight); err != nil {
		return r.fail("submit draw command buffer", err)
	}
	r.stats.FramesSubmitted++

	result, err := r.device.QueuePresent(gpu.PresentInfo{
		WaitSemaphores: []gpu.Semaphore{slot.renderFinished},
		Swapchain:      r.chain.handle,
		ImageIndex:     imageIndex,
	})
	if gpu.IsStale(err) || result == gpu.Suboptimal || r.resized {
		r.resized = false
		if err := r.Refresh(); err != nil {
			return err
		}
	} else if err != nil {
		return r.fail("present swapchain image", err)
	}

	r.current = (r.current + 1) % len(r.frames)
	return nil
}

func (r *Renderer) updateUniforms(imageIndex uint32) error {
	var clock time.Duration
	if r.opts.Clock != nil {
		clock = r.opts.Clock()
	} else {
		clock = time.Since(r.start)
	}

	extent := r.chain.extent
	aspect := float32(extent.Width) / float32(extent.Height)
	u := ComputeUniforms(r.opts.Camera, clock.Seconds(), aspect)

	buf := r.chain.uniformBuffers[imageIndex]
	data, err := r.device.MapMemory(buf)
	if err != nil {
		return r.fail("map uniform buffer", err)
	}
	u.Encode(data)
	r.device.UnmapMemory(buf)
	return nil
}

// Refresh recreates the swapchain and everything depending on it at the
// window's current size, then re-records the command buffers. It blocks while
// the window has a zero-sized framebuffer.
func (r *Renderer) Refresh() error {
	extent := r.waitForSurface()

	if err := r.WaitIdle(); err != nil {
		return err
	}
	r.destroySwapchain(r.chain)
	r.chain = nil

	chain, err := r.buildSwapchain(extent)
	if err != nil {
		return err
	}
	r.chain = chain
	r.stats.Refreshes++
	r.log.Debug("swapchain refreshed",
		zap.Uint32("width", extent.Width),
		zap.Uint32("height", extent.Height))

	return r.UpdateCommandBuffers()
}

// waitForSurface blocks until the window reports a non-zero size.
func (r *Renderer) waitForSurface() gpu.Extent {
	w, h := r.window.FramebufferSize()
	for w <= 0 || h <= 0 {
		r.window.WaitEvents()
		w, h = r.window.FramebufferSize()
	}
	return gpu.Extent{Width: uint32(w), Height: uint32(h)}
}

// Stats returns a snapshot of the renderer counters.
func (r *Renderer) Stats() Stats {
	stats := r.stats
	stats.Models = r.models.Len()
	stats.FramesInFlight = len(r.frames)
	stats.CurrentFrame = r.current
	if r.chain != nil {
		stats.Extent = r.chain.extent
		stats.ImageCount = len(r.chain.images)
	}
	return stats
}

// Close waits for the GPU and destroys the swapchain and the frame slots.
// Registered models are not released; they belong to whoever added them.
func (r *Renderer) Close() error {
	err := r.device.WaitIdle()
	r.destroySwapchain(r.chain)
	r.chain = nil
	r.destroySyncObjects()
	r.models.Clear()
	if err != nil {
		return fmt.Errorf("close renderer: %w", err)
	}
	return nil
}
