package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/all-yall/crtterm/internal/emblem"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const emblemUniformSize = 64 // one mat4x4<f32>

// EmblemRenderer draws the intro emblem mesh in white into the base target.
// The mesh is uploaded once; only the projection matrix changes per frame.
type EmblemRenderer struct {
	device hal.Device
	queue  hal.Queue
	mesh   *emblem.Mesh

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	vertBuf       hal.Buffer
	uniformBuf    hal.Buffer
	bindGroup     hal.BindGroup

	uniformData [emblemUniformSize]byte
}

// NewEmblemRenderer creates an emblem renderer for mesh. A nil mesh uses
// the procedural crystal.
func NewEmblemRenderer(device hal.Device, queue hal.Queue, mesh *emblem.Mesh) *EmblemRenderer {
	if mesh == nil {
		mesh = emblem.Crystal(6)
	}
	return &EmblemRenderer{device: device, queue: queue, mesh: mesh}
}

// ensurePipeline creates everything on first use. A half-built set from an
// earlier failure is torn down and rebuilt.
func (er *EmblemRenderer) ensurePipeline() error {
	if er.bindGroup != nil {
		return nil
	}
	er.Destroy()
	return er.createPipeline()
}

func (er *EmblemRenderer) createPipeline() error {
	shader, err := er.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "emblem_shader",
		Source: hal.ShaderSource{WGSL: emblemShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile emblem shader: %w", err)
	}
	er.shader = shader

	uniformLayout, err := er.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "emblem_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create emblem uniform layout: %w", err)
	}
	er.uniformLayout = uniformLayout

	pipeLayout, err := er.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "emblem_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{er.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create emblem pipeline layout: %w", err)
	}
	er.pipeLayout = pipeLayout

	pipeline, err := er.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "emblem_pipeline",
		Layout: er.pipeLayout,
		Vertex: hal.VertexState{
			Module:     er.shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: 12,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     er.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: TargetFormat, WriteMask: gputypes.ColorWriteMaskAll},
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
		return fmt.Errorf("create emblem pipeline: %w", err)
	}
	er.pipeline = pipeline

	vertBytes := make([]byte, len(er.mesh.Positions)*4)
	for i, f := range er.mesh.Positions {
		binary.LittleEndian.PutUint32(vertBytes[i*4:], math.Float32bits(f))
	}
	vertBuf, err := er.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "emblem_vertices",
		Size:  uint64(len(vertBytes)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create emblem vertex buffer: %w", err)
	}
	er.vertBuf = vertBuf
	if err := er.queue.WriteBuffer(vertBuf, 0, vertBytes); err != nil {
		return fmt.Errorf("write emblem vertices: %w", err)
	}

	uniformBuf, err := er.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "emblem_uniforms",
		Size:  emblemUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create emblem uniform buffer: %w", err)
	}
	er.uniformBuf = uniformBuf

	bindGroup, err := er.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "emblem_bind_group",
		Layout: er.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: emblemUniformSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create emblem bind group: %w", err)
	}
	er.bindGroup = bindGroup
	return nil
}

// Prepare uploads the projection for this frame. It must run before the
// render pass that calls RecordDraws.
func (er *EmblemRenderer) Prepare(projection emblem.Mat4) error {
	if err := er.ensurePipeline(); err != nil {
		return err
	}
	for i, f := range projection {
		binary.LittleEndian.PutUint32(er.uniformData[i*4:], math.Float32bits(f))
	}
	if err := er.queue.WriteBuffer(er.uniformBuf, 0, er.uniformData[:]); err != nil {
		return fmt.Errorf("write emblem uniforms: %w", err)
	}
	return nil
}

// RecordDraws draws the mesh into an open pass on a TargetFormat target.
func (er *EmblemRenderer) RecordDraws(rp hal.RenderPassEncoder) {
	if er.bindGroup == nil || er.mesh.VertexCount() == 0 {
		return
	}
	rp.SetPipeline(er.pipeline)
	rp.SetBindGroup(0, er.bindGroup, nil)
	rp.SetVertexBuffer(0, er.vertBuf, 0)
	rp.Draw(uint32(er.mesh.VertexCount()), 1, 0, 0)
}

// Destroy releases all GPU resources in reverse creation order. Safe to
// call multiple times.
func (er *EmblemRenderer) Destroy() {
	if er.device == nil {
		return
	}
	if er.bindGroup != nil {
		er.device.DestroyBindGroup(er.bindGroup)
		er.bindGroup = nil
	}
	if er.uniformBuf != nil {
		er.device.DestroyBuffer(er.uniformBuf)
		er.uniformBuf = nil
	}
	if er.vertBuf != nil {
		er.device.DestroyBuffer(er.vertBuf)
		er.vertBuf = nil
	}
	if er.pipeline != nil {
		er.device.DestroyRenderPipeline(er.pipeline)
		er.pipeline = nil
	}
	if er.pipeLayout != nil {
		er.device.DestroyPipelineLayout(er.pipeLayout)
		er.pipeLayout = nil
	}
	if er.uniformLayout != nil {
		er.device.DestroyBindGroupLayout(er.uniformLayout)
		er.uniformLayout = nil
	}
	if er.shader != nil {
		er.device.DestroyShaderModule(er.shader)
		er.shader = nil
	}
}
