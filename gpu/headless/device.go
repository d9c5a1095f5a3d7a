// Package headless implements gpu.Device in software. Submitted work runs on
// a simulated GPU timeline goroutine, so fences, semaphores and in-flight
// resources behave as they would against a real queue. The device checks its
// usage rules on every call and keeps the violations for inspection, which
// makes it suitable both for running the engine without a display and for
// tests.
package headless

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/plus3/vengine/gpu"
	"go.uber.org/zap"
)

// DrawCall is one captured CmdDrawIndexed with the state bound at the time.
type DrawCall struct {
	Pipeline      gpu.Pipeline
	DescriptorSet gpu.DescriptorSet
	VertexBuffer  gpu.Buffer
	IndexBuffer   gpu.Buffer
	IndexCount    uint32
}

// Frame describes the most recently presented image.
type Frame struct {
	Number     uint64
	ImageIndex uint32
	Draws      []DrawCall
}

// Stats counts device activity since creation.
type Stats struct {
	Submits     uint64
	Presents    uint64
	Acquires    uint64
	DrawCalls   uint64
	FenceWaits  uint64
	WaitIdles   uint64
	LiveObjects int
	MemoryUsed  uint64
	InFlight    int
}

type Option func(*Device)

// WithSurface sets the surface swapchains present to. Without one the surface
// always matches the swapchain.
func WithSurface(s gpu.Surface) Option {
	return func(d *Device) { d.surface = s }
}

// WithLatency makes every submitted batch take at least latency on the
// simulated GPU.
func WithLatency(latency time.Duration) Option {
	return func(d *Device) { d.latency = latency }
}

// WithMemoryLimit caps the bytes of buffer and image memory the device hands
// out. Zero means unlimited.
func WithMemoryLimit(bytes uint64) Option {
	return func(d *Device) { d.memoryLimit = bytes }
}

func WithLogger(log *zap.Logger) Option {
	return func(d *Device) { d.log = log }
}

// Device is a software gpu.Device.
type Device struct {
	mu   sync.Mutex
	cond *sync.Cond

	log         *zap.Logger
	surface     gpu.Surface
	latency     time.Duration
	memoryLimit uint64
	memoryUsed  uint64

	objects    *intmap.Map[uint64, any]
	nextHandle uint64
	lost       bool

	queue     chan queueOp
	done      chan struct{}
	closeOnce sync.Once
	inFlight  int

	stats      Stats
	lastDraws  []DrawCall
	lastFrame  Frame
	validation []error
}

var _ gpu.Device = (*Device)(nil)

// New creates a device and starts its GPU timeline.
func New(opts ...Option) *Device {
	d := &Device{
		log:     zap.NewNop(),
		objects: intmap.New[uint64, any](256),
		queue:   make(chan queueOp, 64),
		done:    make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Lose simulates a device loss. Every later call fails with gpu.ErrDeviceLost.
func (d *Device) Lose() {
	d.mu.Lock()
	d.lost = true
	d.cond.Broadcast()
	d.mu.Unlock()
}

// Invalidate marks a swapchain out of date, as a platform does when the
// surface changes underneath it.
func (d *Device) Invalidate(sc gpu.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, err := get[swapchain](d, uint64(sc)); err == nil {
		s.outOfDate = true
	}
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := d.stats
	stats.LiveObjects = d.objects.Len()
	stats.MemoryUsed = d.memoryUsed
	stats.InFlight = d.inFlight
	return stats
}

// LastFrame returns the draw calls of the most recently presented image.
func (d *Device) LastFrame() Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastFrame
}

// Validation returns every usage violation observed so far.
func (d *Device) Validation() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]error(nil), d.validation...)
}

// Close waits for the queue to drain and stops the GPU timeline. It fails if
// objects created from the device are still alive.
func (d *Device) Close() error {
	d.mu.Lock()
	for d.inFlight > 0 {
		d.cond.Wait()
	}
	d.mu.Unlock()

	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	if n := d.objects.Len(); n > 0 {
		counts := map[string]int{}
		d.objects.ForEach(func(_ uint64, obj any) bool {
			counts[reflect.TypeOf(obj).Elem().Name()]++
			return true
		})
		return d.invalid(fmt.Errorf("%w: %d objects still alive at close: %v", gpu.ErrInvalidUsage, n, counts))
	}
	return nil
}

// invalid records a usage violation and returns it. Must hold d.mu.
func (d *Device) invalid(err error) error {
	d.validation = append(d.validation, err)
	d.log.Warn("gpu validation", zap.Error(err))
	return err
}

func (d *Device) add(obj any) uint64 {
	d.nextHandle++
	d.objects.Put(d.nextHandle, obj)
	return d.nextHandle
}

func (d *Device) checkLost() error {
	if d.lost {
		return gpu.ErrDeviceLost
	}
	return nil
}

func (d *Device) reserve(size uint64) error {
	if d.memoryLimit > 0 && d.memoryUsed+size > d.memoryLimit {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", gpu.ErrOutOfMemory, size, d.memoryUsed, d.memoryLimit)
	}
	d.memoryUsed += size
	return nil
}

// get resolves h to an object of type T. Must hold d.mu.
func get[T any](d *Device, h uint64) (*T, error) {
	kind := reflect.TypeFor[T]().Name()
	if h == 0 {
		return nil, fmt.Errorf("%w: null %s", gpu.ErrInvalidHandle, kind)
	}
	obj, ok := d.objects.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: unknown %s %d", gpu.ErrInvalidHandle, kind, h)
	}
	typed, ok := obj.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: handle %d is not a %s", gpu.ErrInvalidHandle, h, kind)
	}
	return typed, nil
}

// destroy removes the object behind h after release accepts it. Null handles
// are ignored; anything else that fails is recorded as a violation.
func destroy[T any](d *Device, h uint64, release func(*T) error) {
	if h == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, err := get[T](d, h)
	if err != nil {
		d.invalid(fmt.Errorf("destroy: %w", err))
		return
	}
	if release != nil {
		if err := release(obj); err != nil {
			d.invalid(err)
			return
		}
	}
	d.objects.Del(h)
}

// create runs build under the lock and registers its result.
func create[H ~uint64, T any](d *Device, build func() (*T, error)) (H, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return 0, err
	}
	obj, err := build()
	if err != nil {
		return 0, err
	}
	return H(d.add(obj)), nil
}
