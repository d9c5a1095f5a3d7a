package gpu

// Handles are opaque, device-assigned identifiers. The zero value of every
// handle type is the null handle.
type (
	Fence          uint64
	Semaphore      uint64
	Buffer         uint64
	Image          uint64
	ImageView      uint64
	RenderPass     uint64
	Framebuffer    uint64
	Pipeline       uint64
	DescriptorPool uint64
	DescriptorSet  uint64
	CommandBuffer  uint64
	Swapchain      uint64
)

// Extent is a two-dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero, as happens while a window
// is minimized.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

type Format int

const (
	FormatUndefined Format = iota
	FormatB8G8R8A8Srgb
	FormatR8G8B8A8Unorm
	FormatD32Sfloat
)

func (f Format) String() string {
	switch f {
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8_SRGB"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatD32Sfloat:
		return "D32_SFLOAT"
	default:
		return "UNDEFINED"
	}
}

type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

type ImageUsage uint32

const (
	ImageUsageColorAttachment ImageUsage = 1 << iota
	ImageUsageDepthAttachment
	ImageUsageTransient
)

// Result is the non-error outcome of swapchain operations.
type Result int

const (
	Success Result = iota
	// Suboptimal means the swapchain still works but no longer matches the
	// surface exactly.
	Suboptimal
)

func (r Result) String() string {
	if r == Suboptimal {
		return "SUBOPTIMAL"
	}
	return "SUCCESS"
}

type BufferCreateInfo struct {
	Size  uint64
	Usage BufferUsage
}

type ImageCreateInfo struct {
	Extent  Extent
	Format  Format
	Usage   ImageUsage
	Samples int
}

type SwapchainCreateInfo struct {
	Extent        Extent
	Format        Format
	MinImageCount int
	VSync         bool
	// OldSwapchain is retired by the new swapchain when non-null.
	OldSwapchain Swapchain
}

type RenderPassCreateInfo struct {
	ColorFormat Format
	DepthFormat Format
	Samples     int
}

type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent
}

type PipelineCreateInfo struct {
	RenderPass     RenderPass
	Extent         Extent
	VertexStride   uint32
	VertexShader   string
	FragmentShader string
	Samples        int
	DepthTest      bool
}

// ClearValue holds the clear color and depth applied when a render pass begins.
type ClearValue struct {
	Color [4]float32
	Depth float32
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Extent      Extent
	Clear       ClearValue
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     uint32
}
