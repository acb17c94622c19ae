package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/all-yall/crtterm/internal/rect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// InstanceBuffer mirrors a rect.Batch on the GPU. The hal.Buffer is sized to
// the batch capacity and only recreated when the batch outgrows it, so a
// steady-state frame costs exactly one WriteBuffer.
type InstanceBuffer struct {
	device hal.Device
	queue  hal.Queue
	label  string

	buf     hal.Buffer
	size    uint64 // current buffer size in bytes
	staging []byte
}

// NewInstanceBuffer creates an empty instance buffer. No GPU memory is
// allocated until the first Upload.
func NewInstanceBuffer(device hal.Device, queue hal.Queue, label string) *InstanceBuffer {
	return &InstanceBuffer{device: device, queue: queue, label: label}
}

// Upload copies the valid instances of b to the GPU, growing the buffer to
// b's capacity first when needed. Nothing is written for an empty batch.
func (ib *InstanceBuffer) Upload(b *rect.Batch) error {
	need := uint64(b.Capacity()) * rect.InstanceBytes
	if ib.NeedsGrow(b) {
		if err := ib.grow(need); err != nil {
			return err
		}
	}
	inst := b.Instances()
	if len(inst) == 0 {
		return nil
	}
	n := len(inst) * 4
	if cap(ib.staging) < n {
		ib.staging = make([]byte, n, need)
	}
	data := ib.staging[:n]
	for i, f := range inst {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	if err := ib.queue.WriteBuffer(ib.buf, 0, data); err != nil {
		return fmt.Errorf("write %s: %w", ib.label, err)
	}
	return nil
}

// NeedsGrow reports whether uploading b replaces the GPU buffer. The old
// buffer is destroyed by that upload, so no submitted frame may still read
// it.
func (ib *InstanceBuffer) NeedsGrow(b *rect.Batch) bool {
	return uint64(b.Capacity())*rect.InstanceBytes > ib.size
}

func (ib *InstanceBuffer) grow(size uint64) error {
	buf, err := ib.device.CreateBuffer(&hal.BufferDescriptor{
		Label: ib.label,
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", ib.label, err)
	}
	old := ib.size
	if ib.buf != nil {
		ib.device.DestroyBuffer(ib.buf)
	}
	ib.buf = buf
	ib.size = size
	slogger().Debug("gpu: instance buffer grown", "label", ib.label, "from", old, "to", size)
	return nil
}

// Buffer returns the underlying vertex buffer, or nil before the first
// non-empty upload.
func (ib *InstanceBuffer) Buffer() hal.Buffer { return ib.buf }

// Size returns the current buffer size in bytes.
func (ib *InstanceBuffer) Size() uint64 { return ib.size }

// Destroy releases the GPU buffer. Safe to call more than once.
func (ib *InstanceBuffer) Destroy() {
	if ib.buf != nil {
		ib.device.DestroyBuffer(ib.buf)
		ib.buf = nil
	}
	ib.size = 0
	ib.staging = nil
}
