package headless

import (
	"fmt"

	"github.com/plus3/vengine/gpu"
)

type cbState int

const (
	cbInitial cbState = iota
	cbRecording
	cbExecutable
)

type opcode int

const (
	opBeginRenderPass opcode = iota
	opBindPipeline
	opBindDescriptorSet
	opBindVertexBuffer
	opBindIndexBuffer
	opDrawIndexed
	opEndRenderPass
)

type command struct {
	op         opcode
	handle     uint64
	indexCount uint32
}

type commandBuffer struct {
	state    cbState
	commands []command
	// pending counts queued batches executing this command buffer.
	pending int
	inPass  bool
	bound   DrawCall
	err     error
}

func (d *Device) AllocateCommandBuffers(count int) ([]gpu.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return nil, err
	}

	cbs := make([]gpu.CommandBuffer, count)
	for i := range cbs {
		cbs[i] = gpu.CommandBuffer(d.add(&commandBuffer{}))
	}
	return cbs, nil
}

func (d *Device) FreeCommandBuffers(cbs []gpu.CommandBuffer) {
	for _, cb := range cbs {
		destroy(d, uint64(cb), func(c *commandBuffer) error {
			if c.pending > 0 {
				return fmt.Errorf("%w: command buffer %d freed while pending", gpu.ErrInvalidUsage, cb)
			}
			return nil
		})
	}
}

func (d *Device) ResetCommandBuffer(cb gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := get[commandBuffer](d, uint64(cb))
	if err != nil {
		return d.invalid(err)
	}
	if c.pending > 0 {
		return d.invalid(fmt.Errorf("%w: reset of command buffer %d while pending", gpu.ErrInvalidUsage, cb))
	}
	c.reset()
	return nil
}

func (d *Device) BeginCommandBuffer(cb gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return err
	}

	c, err := get[commandBuffer](d, uint64(cb))
	if err != nil {
		return d.invalid(err)
	}
	if c.pending > 0 {
		return d.invalid(fmt.Errorf("%w: begin of command buffer %d while pending", gpu.ErrInvalidUsage, cb))
	}
	if c.state == cbRecording {
		return d.invalid(fmt.Errorf("%w: command buffer %d is already recording", gpu.ErrInvalidUsage, cb))
	}
	c.reset()
	c.state = cbRecording
	return nil
}

func (d *Device) EndCommandBuffer(cb gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := get[commandBuffer](d, uint64(cb))
	if err != nil {
		return d.invalid(err)
	}
	if c.state != cbRecording {
		return d.invalid(fmt.Errorf("%w: end of command buffer %d that is not recording", gpu.ErrInvalidUsage, cb))
	}
	if c.err == nil && c.inPass {
		c.err = d.invalid(fmt.Errorf("%w: command buffer %d ended inside a render pass", gpu.ErrInvalidUsage, cb))
	}
	if c.err != nil {
		err := c.err
		c.reset()
		return err
	}
	c.state = cbExecutable
	return nil
}

func (c *commandBuffer) reset() {
	c.state = cbInitial
	c.commands = c.commands[:0]
	c.inPass = false
	c.bound = DrawCall{}
	c.err = nil
}

// record appends cmd to cb after check accepts it. Errors are kept on the
// command buffer and returned by EndCommandBuffer.
func (d *Device) record(cb gpu.CommandBuffer, cmd command, check func(c *commandBuffer) error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := get[commandBuffer](d, uint64(cb))
	if err != nil {
		d.invalid(err)
		return
	}
	if c.err != nil {
		return
	}
	if c.state != cbRecording {
		c.err = d.invalid(fmt.Errorf("%w: command recorded into command buffer %d outside begin/end", gpu.ErrInvalidUsage, cb))
		return
	}
	if check != nil {
		if err := check(c); err != nil {
			c.err = d.invalid(err)
			return
		}
	}
	c.commands = append(c.commands, cmd)
}

func (d *Device) CmdBeginRenderPass(cb gpu.CommandBuffer, info gpu.RenderPassBeginInfo) {
	d.record(cb, command{op: opBeginRenderPass, handle: uint64(info.Framebuffer)}, func(c *commandBuffer) error {
		if c.inPass {
			return fmt.Errorf("%w: nested render pass in command buffer %d", gpu.ErrInvalidUsage, cb)
		}
		if _, err := get[renderPass](d, uint64(info.RenderPass)); err != nil {
			return err
		}
		if _, err := get[framebuffer](d, uint64(info.Framebuffer)); err != nil {
			return err
		}
		c.inPass = true
		return nil
	})
}

func (d *Device) CmdBindPipeline(cb gpu.CommandBuffer, p gpu.Pipeline) {
	d.record(cb, command{op: opBindPipeline, handle: uint64(p)}, func(c *commandBuffer) error {
		if _, err := get[pipeline](d, uint64(p)); err != nil {
			return err
		}
		c.bound.Pipeline = p
		return nil
	})
}

func (d *Device) CmdBindDescriptorSet(cb gpu.CommandBuffer, set gpu.DescriptorSet) {
	d.record(cb, command{op: opBindDescriptorSet, handle: uint64(set)}, func(c *commandBuffer) error {
		if _, err := get[descriptorSet](d, uint64(set)); err != nil {
			return err
		}
		c.bound.DescriptorSet = set
		return nil
	})
}

func (d *Device) CmdBindVertexBuffer(cb gpu.CommandBuffer, b gpu.Buffer) {
	d.record(cb, command{op: opBindVertexBuffer, handle: uint64(b)}, func(c *commandBuffer) error {
		if err := d.checkBufferUsage(b, gpu.BufferUsageVertex); err != nil {
			return err
		}
		c.bound.VertexBuffer = b
		return nil
	})
}

func (d *Device) CmdBindIndexBuffer(cb gpu.CommandBuffer, b gpu.Buffer) {
	d.record(cb, command{op: opBindIndexBuffer, handle: uint64(b)}, func(c *commandBuffer) error {
		if err := d.checkBufferUsage(b, gpu.BufferUsageIndex); err != nil {
			return err
		}
		c.bound.IndexBuffer = b
		return nil
	})
}

func (d *Device) CmdDrawIndexed(cb gpu.CommandBuffer, indexCount uint32) {
	d.record(cb, command{op: opDrawIndexed, indexCount: indexCount}, func(c *commandBuffer) error {
		switch {
		case !c.inPass:
			return fmt.Errorf("%w: draw outside a render pass in command buffer %d", gpu.ErrInvalidUsage, cb)
		case c.bound.Pipeline == 0:
			return fmt.Errorf("%w: draw without a pipeline in command buffer %d", gpu.ErrInvalidUsage, cb)
		case c.bound.VertexBuffer == 0 || c.bound.IndexBuffer == 0:
			return fmt.Errorf("%w: draw without vertex and index buffers in command buffer %d", gpu.ErrInvalidUsage, cb)
		}
		return nil
	})
}

func (d *Device) CmdEndRenderPass(cb gpu.CommandBuffer) {
	d.record(cb, command{op: opEndRenderPass}, func(c *commandBuffer) error {
		if !c.inPass {
			return fmt.Errorf("%w: end of render pass that was not begun in command buffer %d", gpu.ErrInvalidUsage, cb)
		}
		c.inPass = false
		return nil
	})
}

// checkBufferUsage resolves b and checks its usage flags. Must hold d.mu.
func (d *Device) checkBufferUsage(b gpu.Buffer, usage gpu.BufferUsage) error {
	buf, err := get[buffer](d, uint64(b))
	if err != nil {
		return err
	}
	if buf.usage&usage == 0 {
		return fmt.Errorf("%w: buffer %d lacks usage %d", gpu.ErrInvalidUsage, b, usage)
	}
	return nil
}
