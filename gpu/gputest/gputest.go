// Package gputest provides a recording gpu.Device for tests. It forwards every
// call to a real device (a headless one by default), keeps an ordered log of
// the calls, and can override the results of swapchain operations so tests can
// drive staleness on demand.
package gputest

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/plus3/vengine/gpu"
	"github.com/plus3/vengine/gpu/headless"
)

// Call is one entry of the call log.
type Call struct {
	Op     string
	Handle uint64
	// Arg carries the call's secondary value: image index, index count,
	// wait semaphore or submit fence, depending on Op.
	Arg uint64
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d, %d)", c.Op, c.Handle, c.Arg)
}

// Outcome replaces the result of one AcquireNextImage or QueuePresent.
type Outcome struct {
	Result gpu.Result
	Err    error
}

var (
	OutOfDate  = Outcome{Err: gpu.ErrOutOfDate}
	Suboptimal = Outcome{Result: gpu.Suboptimal}
)

// Device records calls made against the wrapped device.
type Device struct {
	inner gpu.Device

	mu      sync.Mutex
	calls   []Call
	acquire []Outcome
	present []Outcome
}

var _ gpu.Device = (*Device)(nil)

// New wraps inner. A nil inner gets a fresh headless device.
func New(inner gpu.Device) *Device {
	if inner == nil {
		inner = headless.New()
	}
	return &Device{inner: inner}
}

// Inner returns the wrapped device.
func (d *Device) Inner() gpu.Device {
	return d.inner
}

// ScriptAcquire queues outcomes for the next AcquireNextImage calls. An
// outcome with an error is returned without reaching the wrapped device.
func (d *Device) ScriptAcquire(outcomes ...Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquire = append(d.acquire, outcomes...)
}

// ScriptPresent queues outcomes for the next QueuePresent calls. The present
// still reaches the wrapped device; only the returned result is replaced.
func (d *Device) ScriptPresent(outcomes ...Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.present = append(d.present, outcomes...)
}

// Calls returns a copy of the call log.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// Filter returns the logged calls whose Op is one of ops, in order.
func (d *Device) Filter(ops ...string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if slices.Contains(ops, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times op was called.
func (d *Device) Count(op string) int {
	return len(d.Filter(op))
}

// Reset clears the call log.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = d.calls[:0]
}

func (d *Device) log(op string, handle, arg uint64) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{Op: op, Handle: handle, Arg: arg})
	d.mu.Unlock()
}

func (d *Device) next(queue *[]Outcome) (Outcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(*queue) == 0 {
		return Outcome{}, false
	}
	o := (*queue)[0]
	*queue = (*queue)[1:]
	return o, true
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	f, err := d.inner.CreateFence(signaled)
	d.log("CreateFence", uint64(f), 0)
	return f, err
}

func (d *Device) DestroyFence(f gpu.Fence) {
	d.log("DestroyFence", uint64(f), 0)
	d.inner.DestroyFence(f)
}

func (d *Device) WaitForFence(f gpu.Fence, timeout time.Duration) error {
	err := d.inner.WaitForFence(f, timeout)
	d.log("WaitForFence", uint64(f), 0)
	return err
}

func (d *Device) ResetFence(f gpu.Fence) error {
	d.log("ResetFence", uint64(f), 0)
	return d.inner.ResetFence(f)
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	s, err := d.inner.CreateSemaphore()
	d.log("CreateSemaphore", uint64(s), 0)
	return s, err
}

func (d *Device) DestroySemaphore(s gpu.Semaphore) {
	d.log("DestroySemaphore", uint64(s), 0)
	d.inner.DestroySemaphore(s)
}

func (d *Device) WaitIdle() error {
	err := d.inner.WaitIdle()
	d.log("WaitIdle", 0, 0)
	return err
}

func (d *Device) CreateBuffer(info gpu.BufferCreateInfo) (gpu.Buffer, error) {
	b, err := d.inner.CreateBuffer(info)
	d.log("CreateBuffer", uint64(b), info.Size)
	return b, err
}

func (d *Device) DestroyBuffer(b gpu.Buffer) {
	d.log("DestroyBuffer", uint64(b), 0)
	d.inner.DestroyBuffer(b)
}

func (d *Device) MapMemory(b gpu.Buffer) ([]byte, error) {
	d.log("MapMemory", uint64(b), 0)
	return d.inner.MapMemory(b)
}

func (d *Device) UnmapMemory(b gpu.Buffer) {
	d.log("UnmapMemory", uint64(b), 0)
	d.inner.UnmapMemory(b)
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo) (gpu.Image, error) {
	i, err := d.inner.CreateImage(info)
	d.log("CreateImage", uint64(i), 0)
	return i, err
}

func (d *Device) DestroyImage(i gpu.Image) {
	d.log("DestroyImage", uint64(i), 0)
	d.inner.DestroyImage(i)
}

func (d *Device) CreateImageView(i gpu.Image) (gpu.ImageView, error) {
	v, err := d.inner.CreateImageView(i)
	d.log("CreateImageView", uint64(v), uint64(i))
	return v, err
}

func (d *Device) DestroyImageView(v gpu.ImageView) {
	d.log("DestroyImageView", uint64(v), 0)
	d.inner.DestroyImageView(v)
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	sc, err := d.inner.CreateSwapchain(info)
	d.log("CreateSwapchain", uint64(sc), uint64(info.OldSwapchain))
	return sc, err
}

func (d *Device) DestroySwapchain(sc gpu.Swapchain) {
	d.log("DestroySwapchain", uint64(sc), 0)
	d.inner.DestroySwapchain(sc)
}

func (d *Device) SwapchainImages(sc gpu.Swapchain) ([]gpu.Image, error) {
	return d.inner.SwapchainImages(sc)
}

func (d *Device) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore) (uint32, gpu.Result, error) {
	if o, ok := d.next(&d.acquire); ok && o.Err != nil {
		d.log("AcquireNextImage", uint64(sc), uint64(signal))
		return 0, o.Result, o.Err
	} else if ok {
		index, _, err := d.inner.AcquireNextImage(sc, signal)
		d.log("AcquireNextImage", uint64(sc), uint64(signal))
		return index, o.Result, err
	}
	index, res, err := d.inner.AcquireNextImage(sc, signal)
	d.log("AcquireNextImage", uint64(sc), uint64(signal))
	return index, res, err
}

func (d *Device) QueuePresent(info gpu.PresentInfo) (gpu.Result, error) {
	res, err := d.inner.QueuePresent(info)
	d.log("QueuePresent", uint64(info.Swapchain), uint64(info.ImageIndex))
	if o, ok := d.next(&d.present); ok && err == nil {
		return o.Result, o.Err
	}
	return res, err
}

func (d *Device) CreateRenderPass(info gpu.RenderPassCreateInfo) (gpu.RenderPass, error) {
	rp, err := d.inner.CreateRenderPass(info)
	d.log("CreateRenderPass", uint64(rp), 0)
	return rp, err
}

func (d *Device) DestroyRenderPass(rp gpu.RenderPass) {
	d.log("DestroyRenderPass", uint64(rp), 0)
	d.inner.DestroyRenderPass(rp)
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	fb, err := d.inner.CreateFramebuffer(info)
	d.log("CreateFramebuffer", uint64(fb), 0)
	return fb, err
}

func (d *Device) DestroyFramebuffer(fb gpu.Framebuffer) {
	d.log("DestroyFramebuffer", uint64(fb), 0)
	d.inner.DestroyFramebuffer(fb)
}

func (d *Device) CreatePipeline(info gpu.PipelineCreateInfo) (gpu.Pipeline, error) {
	p, err := d.inner.CreatePipeline(info)
	d.log("CreatePipeline", uint64(p), 0)
	return p, err
}

func (d *Device) DestroyPipeline(p gpu.Pipeline) {
	d.log("DestroyPipeline", uint64(p), 0)
	d.inner.DestroyPipeline(p)
}

func (d *Device) CreateDescriptorPool(maxSets int) (gpu.DescriptorPool, error) {
	p, err := d.inner.CreateDescriptorPool(maxSets)
	d.log("CreateDescriptorPool", uint64(p), uint64(maxSets))
	return p, err
}

func (d *Device) DestroyDescriptorPool(p gpu.DescriptorPool) {
	d.log("DestroyDescriptorPool", uint64(p), 0)
	d.inner.DestroyDescriptorPool(p)
}

func (d *Device) AllocateDescriptorSets(p gpu.DescriptorPool, count int) ([]gpu.DescriptorSet, error) {
	sets, err := d.inner.AllocateDescriptorSets(p, count)
	d.log("AllocateDescriptorSets", uint64(p), uint64(count))
	return sets, err
}

func (d *Device) UpdateDescriptorSet(set gpu.DescriptorSet, uniform gpu.Buffer) error {
	d.log("UpdateDescriptorSet", uint64(set), uint64(uniform))
	return d.inner.UpdateDescriptorSet(set, uniform)
}

func (d *Device) AllocateCommandBuffers(count int) ([]gpu.CommandBuffer, error) {
	cbs, err := d.inner.AllocateCommandBuffers(count)
	d.log("AllocateCommandBuffers", 0, uint64(count))
	return cbs, err
}

func (d *Device) FreeCommandBuffers(cbs []gpu.CommandBuffer) {
	d.log("FreeCommandBuffers", 0, uint64(len(cbs)))
	d.inner.FreeCommandBuffers(cbs)
}

func (d *Device) ResetCommandBuffer(cb gpu.CommandBuffer) error {
	d.log("ResetCommandBuffer", uint64(cb), 0)
	return d.inner.ResetCommandBuffer(cb)
}

func (d *Device) BeginCommandBuffer(cb gpu.CommandBuffer) error {
	d.log("BeginCommandBuffer", uint64(cb), 0)
	return d.inner.BeginCommandBuffer(cb)
}

func (d *Device) EndCommandBuffer(cb gpu.CommandBuffer) error {
	d.log("EndCommandBuffer", uint64(cb), 0)
	return d.inner.EndCommandBuffer(cb)
}

func (d *Device) CmdBeginRenderPass(cb gpu.CommandBuffer, info gpu.RenderPassBeginInfo) {
	d.log("CmdBeginRenderPass", uint64(cb), uint64(info.Framebuffer))
	d.inner.CmdBeginRenderPass(cb, info)
}

func (d *Device) CmdBindPipeline(cb gpu.CommandBuffer, p gpu.Pipeline) {
	d.log("CmdBindPipeline", uint64(cb), uint64(p))
	d.inner.CmdBindPipeline(cb, p)
}

func (d *Device) CmdBindDescriptorSet(cb gpu.CommandBuffer, set gpu.DescriptorSet) {
	d.log("CmdBindDescriptorSet", uint64(cb), uint64(set))
	d.inner.CmdBindDescriptorSet(cb, set)
}

func (d *Device) CmdBindVertexBuffer(cb gpu.CommandBuffer, b gpu.Buffer) {
	d.log("CmdBindVertexBuffer", uint64(cb), uint64(b))
	d.inner.CmdBindVertexBuffer(cb, b)
}

func (d *Device) CmdBindIndexBuffer(cb gpu.CommandBuffer, b gpu.Buffer) {
	d.log("CmdBindIndexBuffer", uint64(cb), uint64(b))
	d.inner.CmdBindIndexBuffer(cb, b)
}

func (d *Device) CmdDrawIndexed(cb gpu.CommandBuffer, indexCount uint32) {
	d.log("CmdDrawIndexed", uint64(cb), uint64(indexCount))
	d.inner.CmdDrawIndexed(cb, indexCount)
}

func (d *Device) CmdEndRenderPass(cb gpu.CommandBuffer) {
	d.log("CmdEndRenderPass", uint64(cb), 0)
	d.inner.CmdEndRenderPass(cb)
}

func (d *Device) QueueSubmit(info gpu.SubmitInfo, fence gpu.Fence) error {
	var cb uint64
	if len(info.CommandBuffers) > 0 {
		cb = uint64(info.CommandBuffers[0])
	}
	d.log("QueueSubmit", cb, uint64(fence))
	return d.inner.QueueSubmit(info, fence)
}

func (d *Device) Close() error {
	d.log("Close", 0, 0)
	return d.inner.Close()
}

// Surface is a resizable gpu.Surface.
type Surface struct {
	mu            sync.Mutex
	width, height int
}

func NewSurface(width, height int) *Surface {
	return &Surface{width: width, height: height}
}

func (s *Surface) FramebufferSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}
