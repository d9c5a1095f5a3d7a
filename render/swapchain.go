package render

import (
	"fmt"

	"github.com/plus3/vengine/asset"
	"github.com/plus3/vengine/gpu"
	"go.uber.org/zap"
)

const (
	colorFormat = gpu.FormatB8G8R8A8Srgb
	depthFormat = gpu.FormatD32Sfloat
)

// swapchain holds every object whose lifetime is tied to the swapchain. It is
// built in one place, both at startup and on refresh.
type swapchain struct {
	extent     gpu.Extent
	handle     gpu.Swapchain
	images     []gpu.Image
	imageViews []gpu.ImageView

	renderPass gpu.RenderPass
	pipeline   gpu.Pipeline

	colorImage gpu.Image
	colorView  gpu.ImageView
	depthImage gpu.Image
	depthView  gpu.ImageView

	framebuffers []gpu.Framebuffer

	uniformBuffers []gpu.Buffer
	descriptorPool gpu.DescriptorPool
	descriptorSets []gpu.DescriptorSet

	commandBuffers []gpu.CommandBuffer
}

// buildSwapchain creates the swapchain for extent and every object depending
// on it, in dependency order. On failure everything created so far is
// destroyed again.
func (r *Renderer) buildSwapchain(extent gpu.Extent) (*swapchain, error) {
	sc := &swapchain{extent: extent}
	if err := r.populateSwapchain(sc); err != nil {
		r.destroySwapchain(sc)
		return nil, err
	}
	r.log.Debug("swapchain built",
		zap.Uint32("width", extent.Width),
		zap.Uint32("height", extent.Height),
		zap.Int("images", len(sc.images)))
	return sc, nil
}

func (r *Renderer) populateSwapchain(sc *swapchain) error {
	dev := r.device
	var err error

	sc.handle, err = dev.CreateSwapchain(gpu.SwapchainCreateInfo{
		Extent:        sc.extent,
		Format:        colorFormat,
		MinImageCount: r.opts.FramesInFlight + 1,
		VSync:         r.opts.VSync,
	})
	if err != nil {
		return r.fail("create swapchain", err)
	}
	if sc.images, err = dev.SwapchainImages(sc.handle); err != nil {
		return r.fail("get swapchain images", err)
	}
	for _, img := range sc.images {
		view, err := dev.CreateImageView(img)
		if err != nil {
			return r.fail("create swapchain image view", err)
		}
		sc.imageViews = append(sc.imageViews, view)
	}

	if sc.renderPass, err = dev.CreateRenderPass(gpu.RenderPassCreateInfo{
		ColorFormat: colorFormat,
		DepthFormat: depthFormat,
		Samples:     r.opts.Samples,
	}); err != nil {
		return r.fail("create render pass", err)
	}

	if sc.pipeline, err = dev.CreatePipeline(gpu.PipelineCreateInfo{
		RenderPass:     sc.renderPass,
		Extent:         sc.extent,
		VertexStride:   asset.VertexStride,
		VertexShader:   r.opts.VertexShader,
		FragmentShader: r.opts.FragmentShader,
		Samples:        r.opts.Samples,
		DepthTest:      true,
	}); err != nil {
		return r.fail("create graphics pipeline", err)
	}

	if r.opts.Samples > 1 {
		if sc.colorImage, err = dev.CreateImage(gpu.ImageCreateInfo{
			Extent:  sc.extent,
			Format:  colorFormat,
			Usage:   gpu.ImageUsageColorAttachment | gpu.ImageUsageTransient,
			Samples: r.opts.Samples,
		}); err != nil {
			return r.fail("create color image", err)
		}
		if sc.colorView, err = dev.CreateImageView(sc.colorImage); err != nil {
			return r.fail("create color image view", err)
		}
	}

	if sc.depthImage, err = dev.CreateImage(gpu.ImageCreateInfo{
		Extent:  sc.extent,
		Format:  depthFormat,
		Usage:   gpu.ImageUsageDepthAttachment,
		Samples: r.opts.Samples,
	}); err != nil {
		return r.fail("create depth image", err)
	}
	if sc.depthView, err = dev.CreateImageView(sc.depthImage); err != nil {
		return r.fail("create depth image view", err)
	}

	for _, view := range sc.imageViews {
		attachments := []gpu.ImageView{view, sc.depthView}
		if sc.colorView != 0 {
			attachments = []gpu.ImageView{sc.colorView, sc.depthView, view}
		}
		fb, err := dev.CreateFramebuffer(gpu.FramebufferCreateInfo{
			RenderPass:  sc.renderPass,
			Attachments: attachments,
			Extent:      sc.extent,
		})
		if err != nil {
			return r.fail("create framebuffer", err)
		}
		sc.framebuffers = append(sc.framebuffers, fb)
	}

	for range sc.images {
		buf, err := dev.CreateBuffer(gpu.BufferCreateInfo{
			Size:  UniformSize,
			Usage: gpu.BufferUsageUniform,
		})
		if err != nil {
			return r.fail("create uniform buffer", err)
		}
		sc.uniformBuffers = append(sc.uniformBuffers, buf)
	}

	if sc.descriptorPool, err = dev.CreateDescriptorPool(len(sc.images)); err != nil {
		return r.fail("create descriptor pool", err)
	}
	if sc.descriptorSets, err = dev.AllocateDescriptorSets(sc.descriptorPool, len(sc.images)); err != nil {
		return r.fail("allocate descriptor sets", err)
	}
	for i, set := range sc.descriptorSets {
		if err := dev.UpdateDescriptorSet(set, sc.uniformBuffers[i]); err != nil {
			return r.fail("update descriptor set", err)
		}
	}

	if sc.commandBuffers, err = dev.AllocateCommandBuffers(len(sc.images)); err != nil {
		return r.fail("allocate command buffers", err)
	}
	return nil
}

// destroySwapchain releases everything buildSwapchain created, in reverse
// dependency order. The GPU must be idle. Null handles are skipped by the
// device, so a partially built swapchain can be passed.
func (r *Renderer) destroySwapchain(sc *swapchain) {
	if sc == nil {
		return
	}
	dev := r.device

	if len(sc.commandBuffers) > 0 {
		dev.FreeCommandBuffers(sc.commandBuffers)
	}
	dev.DestroyDescriptorPool(sc.descriptorPool)
	for _, buf := range sc.uniformBuffers {
		dev.DestroyBuffer(buf)
	}
	for _, fb := range sc.framebuffers {
		dev.DestroyFramebuffer(fb)
	}
	dev.DestroyImageView(sc.depthView)
	dev.DestroyImage(sc.depthImage)
	dev.DestroyImageView(sc.colorView)
	dev.DestroyImage(sc.colorImage)
	dev.DestroyPipeline(sc.pipeline)
	dev.DestroyRenderPass(sc.renderPass)
	for _, view := range sc.imageViews {
		dev.DestroyImageView(view)
	}
	dev.DestroySwapchain(sc.handle)
}

// fail logs a fatal device error and returns it wrapped with op.
func (r *Renderer) fail(op string, err error) error {
	r.log.Error("renderer failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
