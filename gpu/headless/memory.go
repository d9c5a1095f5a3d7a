package headless

import (
	"fmt"

	"github.com/plus3/vengine/gpu"
)

type buffer struct {
	data   []byte
	usage  gpu.BufferUsage
	mapped bool
	// busy counts queued batches that read the buffer.
	busy int
}

type image struct {
	info gpu.ImageCreateInfo
	size uint64
	// owner is the swapchain that owns the image, or 0.
	owner uint64
}

type imageView struct {
	image uint64
}

func (d *Device) CreateBuffer(info gpu.BufferCreateInfo) (gpu.Buffer, error) {
	return create[gpu.Buffer](d, func() (*buffer, error) {
		if info.Size == 0 {
			return nil, d.invalid(fmt.Errorf("%w: zero sized buffer", gpu.ErrInvalidUsage))
		}
		if err := d.reserve(info.Size); err != nil {
			return nil, err
		}
		return &buffer{data: make([]byte, info.Size), usage: info.Usage}, nil
	})
}

func (d *Device) DestroyBuffer(b gpu.Buffer) {
	destroy(d, uint64(b), func(buf *buffer) error {
		if buf.busy > 0 {
			return fmt.Errorf("%w: buffer %d destroyed while the GPU is reading it", gpu.ErrInvalidUsage, b)
		}
		d.memoryUsed -= uint64(len(buf.data))
		return nil
	})
}

func (d *Device) MapMemory(b gpu.Buffer) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return nil, err
	}

	buf, err := get[buffer](d, uint64(b))
	if err != nil {
		return nil, d.invalid(err)
	}
	if buf.busy > 0 {
		return nil, d.invalid(fmt.Errorf("%w: buffer %d mapped while the GPU is reading it", gpu.ErrInvalidUsage, b))
	}
	if buf.mapped {
		return nil, d.invalid(fmt.Errorf("%w: buffer %d is already mapped", gpu.ErrInvalidUsage, b))
	}
	buf.mapped = true
	return buf.data, nil
}

func (d *Device) UnmapMemory(b gpu.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, err := get[buffer](d, uint64(b))
	if err != nil {
		d.invalid(err)
		return
	}
	if !buf.mapped {
		d.invalid(fmt.Errorf("%w: buffer %d is not mapped", gpu.ErrInvalidUsage, b))
		return
	}
	buf.mapped = false
}

// BufferData returns a copy of a buffer's contents.
func (d *Device) BufferData(b gpu.Buffer) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf, err := get[buffer](d, uint64(b))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.data...), nil
}

func imageSize(info gpu.ImageCreateInfo) uint64 {
	samples := max(info.Samples, 1)
	return uint64(info.Extent.Width) * uint64(info.Extent.Height) * 4 * uint64(samples)
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo) (gpu.Image, error) {
	return create[gpu.Image](d, func() (*image, error) {
		if info.Extent.IsZero() {
			return nil, d.invalid(fmt.Errorf("%w: image with zero extent", gpu.ErrInvalidUsage))
		}
		size := imageSize(info)
		if err := d.reserve(size); err != nil {
			return nil, err
		}
		return &image{info: info, size: size}, nil
	})
}

func (d *Device) DestroyImage(i gpu.Image) {
	destroy(d, uint64(i), func(img *image) error {
		if img.owner != 0 {
			return fmt.Errorf("%w: image %d belongs to swapchain %d", gpu.ErrInvalidUsage, i, img.owner)
		}
		d.memoryUsed -= img.size
		return nil
	})
}

func (d *Device) CreateImageView(i gpu.Image) (gpu.ImageView, error) {
	return create[gpu.ImageView](d, func() (*imageView, error) {
		if _, err := get[image](d, uint64(i)); err != nil {
			return nil, d.invalid(err)
		}
		return &imageView{image: uint64(i)}, nil
	})
}

func (d *Device) DestroyImageView(v gpu.ImageView) {
	destroy[imageView](d, uint64(v), nil)
}
