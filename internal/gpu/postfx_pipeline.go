package gpu

import (
	"fmt"
	"slices"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/postfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fullscreenVertices is the vertex count of the full-screen quad.
const fullscreenVertices = 6

type pipelineKey struct {
	kind   postfx.Kind
	format gputypes.TextureFormat
}

// passResources are the per-pass GPU objects: a uniform buffer written once
// per frame and a bind group pointing at the pass's source targets.
type passResources struct {
	uniform   hal.Buffer
	bindGroup hal.BindGroup
}

// PostProcessor runs a postfx.Plan over a TargetSet. Every pass is a
// full-screen quad drawn with its own program; single-source programs share
// one bind group layout (uniform, texture, sampler) and recombine uses a
// second layout with two textures.
type PostProcessor struct {
	device hal.Device
	queue  hal.Queue

	sampler          hal.Sampler
	singleLayout     hal.BindGroupLayout
	dualLayout       hal.BindGroupLayout
	singlePipeLayout hal.PipelineLayout
	dualPipeLayout   hal.PipelineLayout
	shaders          map[postfx.Kind]hal.ShaderModule
	pipelines        map[pipelineKey]hal.RenderPipeline

	plan       []postfx.Pass
	passes     []passResources
	targetsGen uint64
	scratch    []byte
}

// NewPostProcessor creates a post-processor. GPU objects are created on
// first use.
func NewPostProcessor(device hal.Device, queue hal.Queue) *PostProcessor {
	return &PostProcessor{
		device:    device,
		queue:     queue,
		shaders:   make(map[postfx.Kind]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
}

func programSource(k postfx.Kind) string {
	switch k {
	case postfx.Scanline:
		return fullscreenProgram(scanlineShaderSource)
	case postfx.Threshold:
		return fullscreenProgram(thresholdShaderSource)
	case postfx.Blur:
		return fullscreenProgram(kawaseShaderSource)
	case postfx.Recombine:
		return fullscreenProgram(recombineShaderSource)
	default:
		return fullscreenProgram(blitShaderSource)
	}
}

func (pp *PostProcessor) ensureShared() error {
	if pp.sampler != nil {
		return nil
	}
	sampler, err := pp.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "postfx_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create postfx sampler: %w", err)
	}
	pp.sampler = sampler

	uniformEntry := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	textureEntry := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
	}
	samplerEntry := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		}
	}

	single, err := pp.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "postfx_single_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry, textureEntry(1), samplerEntry(2)},
	})
	if err != nil {
		return fmt.Errorf("create postfx single layout: %w", err)
	}
	pp.singleLayout = single

	dual, err := pp.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "postfx_dual_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry, textureEntry(1), textureEntry(2), samplerEntry(3)},
	})
	if err != nil {
		return fmt.Errorf("create postfx dual layout: %w", err)
	}
	pp.dualLayout = dual

	pp.singlePipeLayout, err = pp.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "postfx_single_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{pp.singleLayout},
	})
	if err != nil {
		return fmt.Errorf("create postfx single pipeline layout: %w", err)
	}
	pp.dualPipeLayout, err = pp.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "postfx_dual_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{pp.dualLayout},
	})
	if err != nil {
		return fmt.Errorf("create postfx dual pipeline layout: %w", err)
	}
	return nil
}

func (pp *PostProcessor) ensurePipeline(kind postfx.Kind, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	key := pipelineKey{kind: kind, format: format}
	if p, ok := pp.pipelines[key]; ok {
		return p, nil
	}
	if err := pp.ensureShared(); err != nil {
		return nil, err
	}
	shader, ok := pp.shaders[kind]
	if !ok {
		var err error
		shader, err = pp.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  kind.String() + "_shader",
			Source: hal.ShaderSource{WGSL: programSource(kind)},
		})
		if err != nil {
			return nil, fmt.Errorf("compile %s shader: %w", kind, err)
		}
		pp.shaders[kind] = shader
	}
	layout := pp.singlePipeLayout
	if kind == postfx.Recombine {
		layout = pp.dualPipeLayout
	}

	pipeline, err := pp.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  kind.String() + "_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", kind, err)
	}
	pp.pipelines[key] = pipeline
	return pipeline, nil
}

// Prepare makes sure every pass of plan has a uniform buffer and a bind
// group for the current targets, then writes this frame's uniforms.
func (pp *PostProcessor) Prepare(plan []postfx.Pass, targets *TargetSet, params postfx.Params, opts crtterm.Options) error {
	if err := pp.ensureShared(); err != nil {
		return err
	}
	if pp.NeedsRebuild(plan, targets) {
		if err := pp.rebuildPasses(plan, targets); err != nil {
			return err
		}
	}
	for i, pass := range plan {
		pp.scratch = postfx.Uniforms(pp.scratch, pass, params, opts)
		if err := pp.queue.WriteBuffer(pp.passes[i].uniform, 0, pp.scratch); err != nil {
			return fmt.Errorf("write %s uniforms: %w", pass.Kind, err)
		}
	}
	return nil
}

// NeedsRebuild reports whether the next Prepare destroys and recreates the
// per-pass uniforms and bind groups.
func (pp *PostProcessor) NeedsRebuild(plan []postfx.Pass, targets *TargetSet) bool {
	return !slices.Equal(plan, pp.plan) || targets.Generation() != pp.targetsGen || len(pp.passes) != len(plan)
}

func (pp *PostProcessor) rebuildPasses(plan []postfx.Pass, targets *TargetSet) error {
	pp.destroyPasses()
	pp.passes = make([]passResources, len(plan))
	for i, pass := range plan {
		ub, err := pp.device.CreateBuffer(&hal.BufferDescriptor{
			Label: pass.Kind.String() + "_uniforms",
			Size:  postfx.UniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			pp.destroyPasses()
			return fmt.Errorf("create %s uniform buffer: %w", pass.Kind, err)
		}
		pp.passes[i].uniform = ub

		entries := []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: postfx.UniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: targets.View(pass.Src).NativeHandle()}},
		}
		layout := pp.singleLayout
		if pass.Kind == postfx.Recombine {
			layout = pp.dualLayout
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: targets.View(pass.Src2).NativeHandle()}},
				gputypes.BindGroupEntry{Binding: 3, Resource: gputypes.SamplerBinding{Sampler: pp.sampler.NativeHandle()}},
			)
		} else {
			entries = append(entries,
				gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: pp.sampler.NativeHandle()}},
			)
		}
		bg, err := pp.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   pass.String(),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			pp.destroyPasses()
			return fmt.Errorf("create %s bind group: %w", pass.Kind, err)
		}
		pp.passes[i].bindGroup = bg
	}
	pp.plan = slices.Clone(plan)
	pp.targetsGen = targets.Generation()
	slogger().Debug("gpu: postfx bind groups rebuilt", "passes", len(plan), "generation", pp.targetsGen)
	return nil
}

// Record encodes one render pass per plan entry. Passes writing Output
// render into output with outputFormat; all others render into targets.
// Prepare must have been called with the same plan and targets.
func (pp *PostProcessor) Record(enc hal.CommandEncoder, plan []postfx.Pass, targets *TargetSet, output hal.TextureView, outputFormat gputypes.TextureFormat) error {
	if len(pp.passes) != len(plan) {
		return fmt.Errorf("postfx: %d passes prepared, %d requested", len(pp.passes), len(plan))
	}
	for i, pass := range plan {
		view, format := output, outputFormat
		if pass.Dst != postfx.Output {
			view, format = targets.View(pass.Dst), TargetFormat
		}
		pipeline, err := pp.ensurePipeline(pass.Kind, format)
		if err != nil {
			return err
		}
		sources := pass.Sources()
		targets.transition(enc, sources, gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding)
		rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: pass.String(),
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{A: 1},
			}},
		})
		rp.SetPipeline(pipeline)
		rp.SetBindGroup(0, pp.passes[i].bindGroup, nil)
		rp.Draw(fullscreenVertices, 1, 0, 0)
		rp.End()
		targets.transition(enc, sources, gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment)
	}
	return nil
}

func (pp *PostProcessor) destroyPasses() {
	for i := len(pp.passes) - 1; i >= 0; i-- {
		if pp.passes[i].bindGroup != nil {
			pp.device.DestroyBindGroup(pp.passes[i].bindGroup)
		}
		if pp.passes[i].uniform != nil {
			pp.device.DestroyBuffer(pp.passes[i].uniform)
		}
	}
	pp.passes = nil
	pp.plan = nil
}

// Destroy releases all GPU objects in reverse creation order. Safe to call
// multiple times.
func (pp *PostProcessor) Destroy() {
	if pp.device == nil {
		return
	}
	pp.destroyPasses()
	for k, p := range pp.pipelines {
		pp.device.DestroyRenderPipeline(p)
		delete(pp.pipelines, k)
	}
	for k, s := range pp.shaders {
		pp.device.DestroyShaderModule(s)
		delete(pp.shaders, k)
	}
	if pp.dualPipeLayout != nil {
		pp.device.DestroyPipelineLayout(pp.dualPipeLayout)
		pp.dualPipeLayout = nil
	}
	if pp.singlePipeLayout != nil {
		pp.device.DestroyPipelineLayout(pp.singlePipeLayout)
		pp.singlePipeLayout = nil
	}
	if pp.dualLayout != nil {
		pp.device.DestroyBindGroupLayout(pp.dualLayout)
		pp.dualLayout = nil
	}
	if pp.singleLayout != nil {
		pp.device.DestroyBindGroupLayout(pp.singleLayout)
		pp.singleLayout = nil
	}
	if pp.sampler != nil {
		pp.device.DestroySampler(pp.sampler)
		pp.sampler = nil
	}
}
