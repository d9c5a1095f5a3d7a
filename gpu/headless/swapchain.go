package headless

import (
	"fmt"

	"github.com/plus3/vengine/gpu"
	"go.uber.org/zap"
)

type swapchain struct {
	info      gpu.SwapchainCreateInfo
	images    []uint64
	next      uint32
	outOfDate bool
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return 0, err
	}
	if info.Extent.IsZero() {
		return 0, d.invalid(fmt.Errorf("%w: swapchain with zero extent", gpu.ErrInvalidUsage))
	}
	if info.OldSwapchain != 0 {
		old, err := get[swapchain](d, uint64(info.OldSwapchain))
		if err != nil {
			return 0, d.invalid(err)
		}
		old.outOfDate = true
	}

	sc := &swapchain{info: info}
	handle := d.add(sc)
	count := max(info.MinImageCount, 2)
	for range count {
		sc.images = append(sc.images, d.add(&image{
			info: gpu.ImageCreateInfo{
				Extent:  info.Extent,
				Format:  info.Format,
				Usage:   gpu.ImageUsageColorAttachment,
				Samples: 1,
			},
			owner: handle,
		}))
	}

	d.log.Debug("swapchain created",
		zap.Uint64("swapchain", handle),
		zap.Uint32("width", info.Extent.Width),
		zap.Uint32("height", info.Extent.Height),
		zap.Int("images", count))
	return gpu.Swapchain(handle), nil
}

func (d *Device) DestroySwapchain(sc gpu.Swapchain) {
	destroy(d, uint64(sc), func(s *swapchain) error {
		for _, img := range s.images {
			d.objects.Del(img)
		}
		return nil
	})
}

func (d *Device) SwapchainImages(sc gpu.Swapchain) ([]gpu.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := get[swapchain](d, uint64(sc))
	if err != nil {
		return nil, d.invalid(err)
	}
	images := make([]gpu.Image, len(s.images))
	for i, img := range s.images {
		images[i] = gpu.Image(img)
	}
	return images, nil
}

// surfaceState compares the surface with the swapchain. Must hold d.mu.
func (d *Device) surfaceState(s *swapchain) (stale, suboptimal bool) {
	if s.outOfDate {
		return true, false
	}
	if d.surface == nil {
		return false, false
	}
	w, h := d.surface.FramebufferSize()
	if w <= 0 || h <= 0 {
		return true, false
	}
	extent := s.info.Extent
	return false, uint32(w) != extent.Width || uint32(h) != extent.Height
}

func (d *Device) AcquireNextImage(sc gpu.Swapchain, signal gpu.Semaphore) (uint32, gpu.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return 0, gpu.Success, err
	}

	s, err := get[swapchain](d, uint64(sc))
	if err != nil {
		return 0, gpu.Success, d.invalid(err)
	}
	sem, err := get[semaphore](d, uint64(signal))
	if err != nil {
		return 0, gpu.Success, d.invalid(err)
	}

	stale, suboptimal := d.surfaceState(s)
	if stale {
		return 0, gpu.Success, gpu.ErrOutOfDate
	}
	if sem.count > 0 {
		return 0, gpu.Success, d.invalid(fmt.Errorf("%w: acquire signals semaphore %d that is already signaled", gpu.ErrInvalidUsage, signal))
	}

	index := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	sem.count++
	d.stats.Acquires++

	if suboptimal {
		return index, gpu.Suboptimal, nil
	}
	return index, gpu.Success, nil
}

func (d *Device) QueuePresent(info gpu.PresentInfo) (gpu.Result, error) {
	d.mu.Lock()
	if err := d.checkLost(); err != nil {
		d.mu.Unlock()
		return gpu.Success, err
	}

	s, err := get[swapchain](d, uint64(info.Swapchain))
	if err != nil {
		d.mu.Unlock()
		return gpu.Success, d.invalid(err)
	}
	if int(info.ImageIndex) >= len(s.images) {
		err := d.invalid(fmt.Errorf("%w: present of image %d, swapchain has %d", gpu.ErrInvalidUsage, info.ImageIndex, len(s.images)))
		d.mu.Unlock()
		return gpu.Success, err
	}
	if err := d.consumeWaits("present", info.WaitSemaphores); err != nil {
		d.mu.Unlock()
		return gpu.Success, err
	}

	stale, suboptimal := d.surfaceState(s)
	d.inFlight++
	d.mu.Unlock()

	d.queue <- &presentOp{imageIndex: info.ImageIndex}

	switch {
	case stale:
		return gpu.Success, gpu.ErrOutOfDate
	case suboptimal:
		return gpu.Suboptimal, nil
	default:
		return gpu.Success, nil
	}
}
