package headless

import (
	"fmt"
	"time"

	"github.com/plus3/vengine/gpu"
)

type queueOp interface {
	execute(d *Device)
}

type batch struct {
	commandBuffers []*commandBuffer
	buffers        []*buffer
	fence          *fence
	draws          []DrawCall
}

type presentOp struct {
	imageIndex uint32
}

func (d *Device) QueueSubmit(info gpu.SubmitInfo, f gpu.Fence) error {
	d.mu.Lock()
	if err := d.checkLost(); err != nil {
		d.mu.Unlock()
		return err
	}

	b, err := d.prepareBatch(info, f)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	if err := d.consumeWaits("submit", info.WaitSemaphores); err != nil {
		d.mu.Unlock()
		return err
	}

	for _, s := range info.SignalSemaphores {
		sem, _ := get[semaphore](d, uint64(s))
		sem.count++
	}
	for _, c := range b.commandBuffers {
		c.pending++
	}
	for _, buf := range b.buffers {
		buf.busy++
	}
	if b.fence != nil {
		b.fence.pending++
	}
	d.inFlight++
	d.stats.Submits++
	d.mu.Unlock()

	d.queue <- b
	return nil
}

// prepareBatch validates a submission and resolves everything it touches
// without changing any state. Must hold d.mu.
func (d *Device) prepareBatch(info gpu.SubmitInfo, f gpu.Fence) (*batch, error) {
	b := &batch{}

	if f != 0 {
		fe, err := get[fence](d, uint64(f))
		if err != nil {
			return nil, d.invalid(fmt.Errorf("submit: %w", err))
		}
		if fe.signaled || fe.pending > 0 {
			return nil, d.invalid(fmt.Errorf("%w: submit with fence %d that is not reset", gpu.ErrInvalidUsage, f))
		}
		b.fence = fe
	}

	for _, s := range info.SignalSemaphores {
		if _, err := get[semaphore](d, uint64(s)); err != nil {
			return nil, d.invalid(fmt.Errorf("submit: %w", err))
		}
	}

	for _, cb := range info.CommandBuffers {
		c, err := get[commandBuffer](d, uint64(cb))
		if err != nil {
			return nil, d.invalid(fmt.Errorf("submit: %w", err))
		}
		if c.state != cbExecutable {
			return nil, d.invalid(fmt.Errorf("%w: submit of command buffer %d that is not executable", gpu.ErrInvalidUsage, cb))
		}
		if c.pending > 0 {
			return nil, d.invalid(fmt.Errorf("%w: submit of command buffer %d that is still pending", gpu.ErrInvalidUsage, cb))
		}
		draws, buffers, err := d.replay(c)
		if err != nil {
			return nil, d.invalid(fmt.Errorf("%w: command buffer %d: %v", gpu.ErrInvalidUsage, cb, err))
		}
		b.commandBuffers = append(b.commandBuffers, c)
		b.buffers = append(b.buffers, buffers...)
		b.draws = append(b.draws, draws...)
	}
	return b, nil
}

// replay walks the recorded commands, checking that every referenced object
// still exists. Must hold d.mu.
func (d *Device) replay(c *commandBuffer) ([]DrawCall, []*buffer, error) {
	var (
		bound   DrawCall
		draws   []DrawCall
		buffers []*buffer
	)
	useBuffer := func(h uint64) error {
		buf, err := get[buffer](d, h)
		if err != nil {
			return err
		}
		buffers = append(buffers, buf)
		return nil
	}

	for _, cmd := range c.commands {
		switch cmd.op {
		case opBeginRenderPass:
			if _, err := get[framebuffer](d, cmd.handle); err != nil {
				return nil, nil, err
			}
		case opBindPipeline:
			if _, err := get[pipeline](d, cmd.handle); err != nil {
				return nil, nil, err
			}
			bound.Pipeline = gpu.Pipeline(cmd.handle)
		case opBindDescriptorSet:
			ds, err := get[descriptorSet](d, cmd.handle)
			if err != nil {
				return nil, nil, err
			}
			if ds.uniform != 0 {
				if err := useBuffer(ds.uniform); err != nil {
					return nil, nil, err
				}
			}
			bound.DescriptorSet = gpu.DescriptorSet(cmd.handle)
		case opBindVertexBuffer:
			if err := useBuffer(cmd.handle); err != nil {
				return nil, nil, err
			}
			bound.VertexBuffer = gpu.Buffer(cmd.handle)
		case opBindIndexBuffer:
			if err := useBuffer(cmd.handle); err != nil {
				return nil, nil, err
			}
			bound.IndexBuffer = gpu.Buffer(cmd.handle)
		case opDrawIndexed:
			draw := bound
			draw.IndexCount = cmd.indexCount
			draws = append(draws, draw)
		}
	}
	return draws, buffers, nil
}

// run is the GPU timeline. It executes queued operations in submission order.
func (d *Device) run() {
	defer close(d.done)
	for op := range d.queue {
		op.execute(d)
	}
}

func (b *batch) execute(d *Device) {
	if d.latency > 0 {
		time.Sleep(d.latency)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range b.commandBuffers {
		c.pending--
	}
	for _, buf := range b.buffers {
		buf.busy--
	}
	if b.fence != nil {
		b.fence.pending--
		b.fence.signaled = true
	}
	d.stats.DrawCalls += uint64(len(b.draws))
	d.lastDraws = b.draws
	d.inFlight--
	d.cond.Broadcast()
}

func (p *presentOp) execute(d *Device) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Presents++
	d.lastFrame = Frame{
		Number:     d.stats.Presents,
		ImageIndex: p.imageIndex,
		Draws:      d.lastDraws,
	}
	d.inFlight--
	d.cond.Broadcast()
}
