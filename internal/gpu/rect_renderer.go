package gpu

import (
	"fmt"

	"github.com/all-yall/crtterm/internal/rect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// verticesPerRect is the unit quad expanded in rect.wgsl from vertex_index.
const verticesPerRect = 6

// RectRenderer draws rect.Batch values as instanced quads. Backgrounds and
// the cursor share the program; pipelines are created lazily per color
// target format because the offscreen targets and the caller's output view
// need not agree.
type RectRenderer struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipelines  map[gputypes.TextureFormat]hal.RenderPipeline
}

// NewRectRenderer creates a rectangle renderer. GPU objects are created on
// first use.
func NewRectRenderer(device hal.Device, queue hal.Queue) *RectRenderer {
	return &RectRenderer{
		device:    device,
		queue:     queue,
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
	}
}

// ensurePipeline returns the pipeline for format, creating the shared
// shader and layout on the first call.
func (rr *RectRenderer) ensurePipeline(format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if p, ok := rr.pipelines[format]; ok {
		return p, nil
	}
	if rr.shader == nil {
		if err := rr.createShared(); err != nil {
			return nil, err
		}
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := rr.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "rect_pipeline",
		Layout: rr.pipeLayout,
		Vertex: hal.VertexState{
			Module:     rr.shader,
			EntryPoint: "vs_main",
			Buffers:    rectInstanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     rr.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
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
		return nil, fmt.Errorf("create rect pipeline: %w", err)
	}
	rr.pipelines[format] = pipeline
	return pipeline, nil
}

func (rr *RectRenderer) createShared() error {
	shader, err := rr.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "rect_shader",
		Source: hal.ShaderSource{WGSL: rectShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile rect shader: %w", err)
	}
	rr.shader = shader

	pipeLayout, err := rr.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "rect_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create rect pipeline layout: %w", err)
	}
	rr.pipeLayout = pipeLayout
	return nil
}

// RecordDraws draws count instances from buf into an open render pass.
// A zero count records nothing.
func (rr *RectRenderer) RecordDraws(rp hal.RenderPassEncoder, format gputypes.TextureFormat, buf hal.Buffer, count int) error {
	if count == 0 || buf == nil {
		return nil
	}
	pipeline, err := rr.ensurePipeline(format)
	if err != nil {
		return err
	}
	rp.SetPipeline(pipeline)
	rp.SetVertexBuffer(0, buf, 0)
	rp.Draw(verticesPerRect, uint32(count), 0, 0)
	return nil
}

// Destroy releases all pipelines and the shared shader. Safe to call
// multiple times.
func (rr *RectRenderer) Destroy() {
	if rr.device == nil {
		return
	}
	for f, p := range rr.pipelines {
		rr.device.DestroyRenderPipeline(p)
		delete(rr.pipelines, f)
	}
	if rr.pipeLayout != nil {
		rr.device.DestroyPipelineLayout(rr.pipeLayout)
		rr.pipeLayout = nil
	}
	if rr.shader != nil {
		rr.device.DestroyShaderModule(rr.shader)
		rr.shader = nil
	}
}

// rectInstanceLayout steps once per instance: a vec4 rectangle followed by
// a vec4 color.
func rectInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: rect.InstanceBytes,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // x, y, w, h
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1}, // r, g, b, a
			},
		},
	}
}
