package headless

import (
	"fmt"
	"time"

	"github.com/plus3/vengine/gpu"
)

type fence struct {
	signaled bool
	// pending counts queued batches that will signal the fence.
	pending int
}

type semaphore struct {
	// count is the number of signal operations not yet consumed by a wait.
	count int
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	return create[gpu.Fence](d, func() (*fence, error) {
		return &fence{signaled: signaled}, nil
	})
}

func (d *Device) DestroyFence(f gpu.Fence) {
	destroy(d, uint64(f), func(fe *fence) error {
		if fe.pending > 0 {
			return fmt.Errorf("%w: fence %d destroyed while a submission will signal it", gpu.ErrInvalidUsage, f)
		}
		return nil
	})
}

func (d *Device) WaitForFence(f gpu.Fence, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.FenceWaits++

	fe, err := get[fence](d, uint64(f))
	if err != nil {
		return d.invalid(err)
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
		if timeout > 0 {
			timer := time.AfterFunc(timeout, d.wake)
			defer timer.Stop()
		}
	}

	for !fe.signaled {
		if d.lost {
			return gpu.ErrDeviceLost
		}
		if fe.pending == 0 {
			return d.invalid(fmt.Errorf("%w: wait on fence %d that no submission will signal", gpu.ErrInvalidUsage, f))
		}
		if timeout >= 0 && !time.Now().Before(deadline) {
			return gpu.ErrTimeout
		}
		d.cond.Wait()
	}
	return nil
}

func (d *Device) ResetFence(f gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}

	fe, err := get[fence](d, uint64(f))
	if err != nil {
		return d.invalid(err)
	}
	if fe.pending > 0 {
		return d.invalid(fmt.Errorf("%w: reset of fence %d with a pending submission", gpu.ErrInvalidUsage, f))
	}
	fe.signaled = false
	return nil
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	return create[gpu.Semaphore](d, func() (*semaphore, error) {
		return &semaphore{}, nil
	})
}

func (d *Device) DestroySemaphore(s gpu.Semaphore) {
	destroy[semaphore](d, uint64(s), nil)
}

func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.WaitIdles++

	for d.inFlight > 0 {
		d.cond.Wait()
	}
	return d.checkLost()
}

// consumeWaits checks that every semaphore has a signal operation to wait on
// and consumes one from each. Must hold d.mu.
func (d *Device) consumeWaits(op string, sems []gpu.Semaphore) error {
	resolved := make([]*semaphore, len(sems))
	for i, s := range sems {
		sem, err := get[semaphore](d, uint64(s))
		if err != nil {
			return d.invalid(fmt.Errorf("%s: %w", op, err))
		}
		if sem.count == 0 {
			return d.invalid(fmt.Errorf("%w: %s waits on semaphore %d that nothing signals", gpu.ErrInvalidUsage, op, s))
		}
		resolved[i] = sem
	}
	for _, sem := range resolved {
		sem.count--
	}
	return nil
}

func (d *Device) wake() {
	d.mu.Lock()
	d.cond.Broadcast()
	d.mu.Unlock()
}
