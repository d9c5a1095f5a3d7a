package gpu

import "errors"

var (
	// ErrOutOfDate reports that the swapchain no longer matches its surface
	// and must be recreated before it can be used again.
	ErrOutOfDate = errors.New("gpu: swapchain out of date")
	// ErrDeviceLost reports an unrecoverable device failure.
	ErrDeviceLost = errors.New("gpu: device lost")
	// ErrOutOfMemory reports a failed allocation of device memory.
	ErrOutOfMemory = errors.New("gpu: out of device memory")
	// ErrTimeout is returned when a wait expires before its fence signals.
	ErrTimeout = errors.New("gpu: timeout")
	// ErrInvalidHandle reports a null, unknown or already destroyed handle.
	ErrInvalidHandle = errors.New("gpu: invalid handle")
	// ErrInvalidUsage reports a call that breaks the device's usage rules,
	// such as recording into a command buffer the GPU is still executing.
	ErrInvalidUsage = errors.New("gpu: invalid usage")
)

// IsStale reports whether err means the swapchain has to be recreated.
func IsStale(err error) bool {
	return errors.Is(err, ErrOutOfDate)
}
