package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// drawCall is one recorded Draw.
type drawCall struct {
	vertices, instances uint32
}

// recordedPass captures what a render pass was opened on and drew.
type recordedPass struct {
	label string
	view  hal.TextureView
	load  gputypes.LoadOp
	draws []drawCall
}

// recordingDevice wraps a noop device and records every render pass of
// every encoder it hands out.
type recordingDevice struct {
	hal.Device
	passes     []*recordedPass
	bindGroups int
}

func (d *recordingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, dev: d}, nil
}

func (d *recordingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.bindGroups++
	return d.Device.CreateBindGroup(desc)
}

type recordingEncoder struct {
	hal.CommandEncoder
	dev *recordingDevice
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &recordedPass{label: desc.Label}
	if len(desc.ColorAttachments) > 0 {
		p.view = desc.ColorAttachments[0].View
		p.load = desc.ColorAttachments[0].LoadOp
	}
	e.dev.passes = append(e.dev.passes, p)
	return &recordingPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: p}
}

type recordingPass struct {
	hal.RenderPassEncoder
	rec *recordedPass
}

func (p *recordingPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.draws = append(p.rec.draws, drawCall{vertices: vertexCount, instances: instanceCount})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func passLabels(passes []*recordedPass) []string {
	out := make([]string, len(passes))
	for i, p := range passes {
		out[i] = p.label
	}
	return out
}

// fencedQueue keeps every submission in flight until the device waits idle.
// The noop queue completes work on submit.
type fencedQueue struct {
	hal.Queue
	submitted uint64
	completed uint64
}

func (q *fencedQueue) Submit(cmdBufs []hal.CommandBuffer) (uint64, error) {
	if _, err := q.Queue.Submit(cmdBufs); err != nil {
		return 0, err
	}
	q.submitted++
	return q.submitted, nil
}

func (q *fencedQueue) PollCompleted() uint64 { return q.completed }

func (q *fencedQueue) busy() bool { return q.completed < q.submitted }

// fencedDevice records every destroy issued while a submission on its
// queue is still in flight.
type fencedDevice struct {
	hal.Device
	queue    *fencedQueue
	inFlight []string
}

func (d *fencedDevice) WaitIdle() error {
	d.queue.completed = d.queue.submitted
	return d.Device.WaitIdle()
}

func (d *fencedDevice) note(kind string) {
	if d.queue.busy() {
		d.inFlight = append(d.inFlight, kind)
	}
}

func (d *fencedDevice) DestroyBuffer(b hal.Buffer) {
	d.note("buffer")
	d.Device.DestroyBuffer(b)
}

func (d *fencedDevice) DestroyTexture(t hal.Texture) {
	d.note("texture")
	d.Device.DestroyTexture(t)
}

func (d *fencedDevice) DestroyTextureView(v hal.TextureView) {
	d.note("texture view")
	d.Device.DestroyTextureView(v)
}

func (d *fencedDevice) DestroyBindGroup(g hal.BindGroup) {
	d.note("bind group")
	d.Device.DestroyBindGroup(g)
}
