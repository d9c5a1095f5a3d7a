package headless

import (
	"fmt"

	"github.com/plus3/vengine/gpu"
)

type renderPass struct {
	info gpu.RenderPassCreateInfo
}

type framebuffer struct {
	info gpu.FramebufferCreateInfo
}

type pipeline struct {
	info gpu.PipelineCreateInfo
}

type descriptorPool struct {
	maxSets int
	sets    []uint64
}

type descriptorSet struct {
	pool    uint64
	uniform uint64
}

func (d *Device) CreateRenderPass(info gpu.RenderPassCreateInfo) (gpu.RenderPass, error) {
	return create[gpu.RenderPass](d, func() (*renderPass, error) {
		if info.ColorFormat == gpu.FormatUndefined {
			return nil, d.invalid(fmt.Errorf("%w: render pass without color format", gpu.ErrInvalidUsage))
		}
		return &renderPass{info: info}, nil
	})
}

func (d *Device) DestroyRenderPass(rp gpu.RenderPass) {
	destroy[renderPass](d, uint64(rp), nil)
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	return create[gpu.Framebuffer](d, func() (*framebuffer, error) {
		if _, err := get[renderPass](d, uint64(info.RenderPass)); err != nil {
			return nil, d.invalid(err)
		}
		for _, v := range info.Attachments {
			if _, err := get[imageView](d, uint64(v)); err != nil {
				return nil, d.invalid(err)
			}
		}
		info.Attachments = append([]gpu.ImageView(nil), info.Attachments...)
		return &framebuffer{info: info}, nil
	})
}

func (d *Device) DestroyFramebuffer(fb gpu.Framebuffer) {
	destroy[framebuffer](d, uint64(fb), nil)
}

func (d *Device) CreatePipeline(info gpu.PipelineCreateInfo) (gpu.Pipeline, error) {
	return create[gpu.Pipeline](d, func() (*pipeline, error) {
		if _, err := get[renderPass](d, uint64(info.RenderPass)); err != nil {
			return nil, d.invalid(err)
		}
		if info.VertexStride == 0 {
			return nil, d.invalid(fmt.Errorf("%w: pipeline without vertex stride", gpu.ErrInvalidUsage))
		}
		return &pipeline{info: info}, nil
	})
}

func (d *Device) DestroyPipeline(p gpu.Pipeline) {
	destroy[pipeline](d, uint64(p), nil)
}

func (d *Device) CreateDescriptorPool(maxSets int) (gpu.DescriptorPool, error) {
	return create[gpu.DescriptorPool](d, func() (*descriptorPool, error) {
		if maxSets <= 0 {
			return nil, d.invalid(fmt.Errorf("%w: descriptor pool without sets", gpu.ErrInvalidUsage))
		}
		return &descriptorPool{maxSets: maxSets}, nil
	})
}

func (d *Device) DestroyDescriptorPool(p gpu.DescriptorPool) {
	destroy(d, uint64(p), func(pool *descriptorPool) error {
		for _, set := range pool.sets {
			d.objects.Del(set)
		}
		return nil
	})
}

func (d *Device) AllocateDescriptorSets(p gpu.DescriptorPool, count int) ([]gpu.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLost(); err != nil {
		return nil, err
	}

	pool, err := get[descriptorPool](d, uint64(p))
	if err != nil {
		return nil, d.invalid(err)
	}
	if len(pool.sets)+count > pool.maxSets {
		return nil, fmt.Errorf("%w: descriptor pool %d holds %d sets", gpu.ErrOutOfMemory, p, pool.maxSets)
	}

	sets := make([]gpu.DescriptorSet, count)
	for i := range sets {
		h := d.add(&descriptorSet{pool: uint64(p)})
		pool.sets = append(pool.sets, h)
		sets[i] = gpu.DescriptorSet(h)
	}
	return sets, nil
}

func (d *Device) UpdateDescriptorSet(set gpu.DescriptorSet, uniform gpu.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ds, err := get[descriptorSet](d, uint64(set))
	if err != nil {
		return d.invalid(err)
	}
	buf, err := get[buffer](d, uint64(uniform))
	if err != nil {
		return d.invalid(err)
	}
	if buf.usage&gpu.BufferUsageUniform == 0 {
		return d.invalid(fmt.Errorf("%w: buffer %d is not a uniform buffer", gpu.ErrInvalidUsage, uniform))
	}
	ds.uniform = uint64(uniform)
	return nil
}
