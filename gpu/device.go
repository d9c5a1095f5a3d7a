// Package gpu defines the explicit, Vulkan-shaped device API the renderer is
// written against. Objects are created and destroyed explicitly, work is
// recorded into command buffers and submitted to a single queue, and CPU/GPU
// ordering is expressed only through fences and semaphores.
//
// Create and submit calls return errors; Destroy calls do not. Destroying the
// null handle is a no-op.
package gpu

import "time"

// WaitForever can be passed to WaitForFence to wait without a deadline.
const WaitForever time.Duration = -1

// Surface is the presentation target a swapchain is created for.
type Surface interface {
	// FramebufferSize returns the current drawable size in pixels. Either
	// dimension is zero while the window is minimized.
	FramebufferSize() (width, height int)
}

// Device is a logical GPU device with one graphics/present queue.
type Device interface {
	// Synchronization
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	// WaitForFence blocks until f is signaled or the timeout expires.
	WaitForFence(f Fence, timeout time.Duration) error
	ResetFence(f Fence) error
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
	// WaitIdle blocks until every submitted batch has finished executing.
	WaitIdle() error

	// Memory
	CreateBuffer(info BufferCreateInfo) (Buffer, error)
	DestroyBuffer(b Buffer)
	// MapMemory returns a host-visible view of the buffer's memory that stays
	// valid until UnmapMemory.
	MapMemory(b Buffer) ([]byte, error)
	UnmapMemory(b Buffer)
	CreateImage(info ImageCreateInfo) (Image, error)
	DestroyImage(i Image)
	CreateImageView(i Image) (ImageView, error)
	DestroyImageView(v ImageView)

	// Presentation
	CreateSwapchain(info SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(sc Swapchain)
	SwapchainImages(sc Swapchain) ([]Image, error)
	// AcquireNextImage returns the index of the next presentable image and
	// arranges for signal to be signaled once it can be rendered to. It
	// returns ErrOutOfDate when the swapchain must be recreated first.
	AcquireNextImage(sc Swapchain, signal Semaphore) (uint32, Result, error)
	// QueuePresent queues the image for presentation after its wait
	// semaphores are signaled.
	QueuePresent(info PresentInfo) (Result, error)

	// Pipeline state
	CreateRenderPass(info RenderPassCreateInfo) (RenderPass, error)
	DestroyRenderPass(rp RenderPass)
	CreateFramebuffer(info FramebufferCreateInfo) (Framebuffer, error)
	DestroyFramebuffer(fb Framebuffer)
	CreatePipeline(info PipelineCreateInfo) (Pipeline, error)
	DestroyPipeline(p Pipeline)
	CreateDescriptorPool(maxSets int) (DescriptorPool, error)
	// DestroyDescriptorPool also frees every set allocated from the pool.
	DestroyDescriptorPool(p DescriptorPool)
	AllocateDescriptorSets(p DescriptorPool, count int) ([]DescriptorSet, error)
	// UpdateDescriptorSet binds a uniform buffer to the set.
	UpdateDescriptorSet(set DescriptorSet, uniform Buffer) error

	// Commands
	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(cbs []CommandBuffer)
	ResetCommandBuffer(cb CommandBuffer) error
	BeginCommandBuffer(cb CommandBuffer) error
	EndCommandBuffer(cb CommandBuffer) error
	CmdBeginRenderPass(cb CommandBuffer, info RenderPassBeginInfo)
	CmdBindPipeline(cb CommandBuffer, p Pipeline)
	CmdBindDescriptorSet(cb CommandBuffer, set DescriptorSet)
	CmdBindVertexBuffer(cb CommandBuffer, b Buffer)
	CmdBindIndexBuffer(cb CommandBuffer, b Buffer)
	CmdDrawIndexed(cb CommandBuffer, indexCount uint32)
	CmdEndRenderPass(cb CommandBuffer)

	// QueueSubmit queues the command buffers for execution. The fence, when
	// non-null, must be unsignaled and is signaled once the batch completes.
	QueueSubmit(info SubmitInfo, fence Fence) error

	// Close releases the device. Every object created from it must have been
	// destroyed first.
	Close() error
}
