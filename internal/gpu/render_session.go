package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/emblem"
	"github.com/all-yall/crtterm/internal/postfx"
	"github.com/all-yall/crtterm/internal/rect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the BytesPerRow alignment WebGPU and DX12 require
// for texture-to-buffer copies.
const copyPitchAlignment = 256

// BaseRecorder draws extra content (glyphs) into the base pass after the
// background rectangles. The pass targets a TargetFormat texture.
type BaseRecorder interface {
	RecordBase(rp hal.RenderPassEncoder, format gputypes.TextureFormat) error
}

// Frame is everything one frame needs. Batches are owned by the caller and
// only read during RenderFrame.
type Frame struct {
	Backgrounds *rect.Batch
	Cursor      *rect.Batch
	Dims        crtterm.Dimensions
	Params      postfx.Params

	// Intro is the emblem projection, or nil once the intro is over.
	Intro *emblem.Mat4

	// Glyphs is an optional hook recorded into the base pass.
	Glyphs BaseRecorder
}

type pendingSubmit struct {
	index   uint64
	encoder hal.CommandEncoder
	cmdBuf  hal.CommandBuffer
}

// Session records and submits frames. It owns the render targets, the
// instance buffers and every pipeline.
//
// Session is not safe for concurrent use.
type Session struct {
	device hal.Device
	queue  hal.Queue

	rects       *RectRenderer
	emblem      *EmblemRenderer
	post        *PostProcessor
	targets     *TargetSet
	backgrounds *InstanceBuffer
	cursor      *InstanceBuffer

	plan []postfx.Pass
	opts crtterm.Options

	// Offscreen output and staging buffer for Snapshot.
	snapshot      colorTarget
	snapshotW     uint32
	snapshotH     uint32
	staging       hal.Buffer
	stagingSize   uint64
	pending       []pendingSubmit
	framesEncoded uint64
	closed        bool
}

// NewSession creates a session. mesh may be nil for the default emblem.
// Targets are allocated by the first Resize.
func NewSession(device hal.Device, queue hal.Queue, opts crtterm.Options, mesh *emblem.Mesh) *Session {
	return &Session{
		device:      device,
		queue:       queue,
		rects:       NewRectRenderer(device, queue),
		emblem:      NewEmblemRenderer(device, queue, mesh),
		post:        NewPostProcessor(device, queue),
		targets:     NewTargetSet(device),
		backgrounds: NewInstanceBuffer(device, queue, "background_instances"),
		cursor:      NewInstanceBuffer(device, queue, "cursor_instances"),
		plan:        postfx.Plan(opts),
		opts:        opts,
	}
}

// Plan returns the post-processing passes this session runs.
func (s *Session) Plan() []postfx.Pass { return s.plan }

// Targets exposes the render target set.
func (s *Session) Targets() *TargetSet { return s.targets }

// FramesEncoded counts successfully submitted frames.
func (s *Session) FramesEncoded() uint64 { return s.framesEncoded }

// SetEmblemMesh replaces the intro emblem mesh. nil restores the default.
// The old emblem resources are released immediately.
func (s *Session) SetEmblemMesh(mesh *emblem.Mesh) {
	s.drain()
	s.emblem.Destroy()
	s.emblem = NewEmblemRenderer(s.device, s.queue, mesh)
}

// Resize recreates the render targets for a w x h canvas.
func (s *Session) Resize(w, h uint32) error {
	if s.closed {
		return crtterm.ErrRendererClosed
	}
	if !s.targets.Matches(w, h) {
		s.drain()
	}
	return s.targets.Ensure(w, h)
}

// RenderFrame records f into output (a view of outputFormat) and submits
// it. A frame whose dimensions disagree with the targets is skipped with
// crtterm.ErrStaleTargets; the caller resizes and tries again.
func (s *Session) RenderFrame(f *Frame, output hal.TextureView, outputFormat gputypes.TextureFormat) error {
	if s.closed {
		return crtterm.ErrRendererClosed
	}
	s.reclaim()
	enc, err := s.beginFrame(f, output, outputFormat)
	if err != nil {
		return err
	}
	return s.submit(enc)
}

// Snapshot renders f into an offscreen texture and reads it back as RGBA.
// It waits for the GPU.
func (s *Session) Snapshot(f *Frame) (*image.RGBA, error) {
	if s.closed {
		return nil, crtterm.ErrRendererClosed
	}
	// The snapshot target and staging buffer may be replaced below.
	s.drain()
	w, h := uint32(f.Dims.CanvasWidth), uint32(f.Dims.CanvasHeight)
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)
	if err := s.ensureSnapshotTarget(w, h); err != nil {
		return nil, err
	}
	if err := s.ensureStaging(size); err != nil {
		return nil, err
	}
	enc, err := s.beginFrame(f, s.snapshot.view, TargetFormat)
	if err != nil {
		return nil, err
	}

	// Render attachment layout to transfer source and back, as Vulkan and
	// DX12 require for CopyTextureToBuffer.
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.snapshot.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(s.snapshot.tex, s.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: s.snapshot.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.snapshot.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	if err := s.submit(enc); err != nil {
		return nil, err
	}
	if err := s.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	s.releasePending()

	mapping, err := s.device.MapBuffer(s.staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	raw := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := 0; row < int(h); row++ {
		src := raw[row*int(alignedBytesPerRow) : row*int(alignedBytesPerRow)+int(bytesPerRow)]
		convertBGRAToRGBA(img.Pix[row*img.Stride:row*img.Stride+int(bytesPerRow)], src)
	}
	if err := s.device.UnmapBuffer(s.staging); err != nil {
		slogger().Warn("gpu: unmap staging buffer", "err", err)
	}
	return img, nil
}

// convertBGRAToRGBA swaps the red and blue channels of src into dst.
func convertBGRAToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = src[i+3]
	}
}

// beginFrame uploads per-frame data and returns an encoder holding the
// whole frame, still open for the caller to append to.
func (s *Session) beginFrame(f *Frame, output hal.TextureView, outputFormat gputypes.TextureFormat) (hal.CommandEncoder, error) {
	w, h := uint32(f.Dims.CanvasWidth), uint32(f.Dims.CanvasHeight)
	if !s.targets.Matches(w, h) {
		tw, th := s.targets.Size()
		slogger().Debug("gpu: frame skipped, targets stale",
			"frame_w", w, "frame_h", h, "target_w", tw, "target_h", th)
		return nil, crtterm.ErrStaleTargets
	}

	// Growing a buffer or rebuilding bind groups destroys objects that
	// frames still in flight may reference.
	if s.backgrounds.NeedsGrow(f.Backgrounds) ||
		(f.Cursor != nil && s.cursor.NeedsGrow(f.Cursor)) ||
		s.post.NeedsRebuild(s.plan, s.targets) {
		s.drain()
	}

	if err := s.backgrounds.Upload(f.Backgrounds); err != nil {
		return nil, err
	}
	if f.Cursor != nil {
		if err := s.cursor.Upload(f.Cursor); err != nil {
			return nil, err
		}
	}
	if f.Intro != nil {
		if err := s.emblem.Prepare(*f.Intro); err != nil {
			return nil, err
		}
	}
	if err := s.post.Prepare(s.plan, s.targets, f.Params, s.opts); err != nil {
		return nil, err
	}

	enc, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "crt_frame_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("crt_frame"); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	if err := s.encodeFrame(enc, f, output, outputFormat); err != nil {
		enc.DiscardEncoding()
		enc.Destroy()
		return nil, err
	}
	return enc, nil
}

// encodeFrame records the base pass, the post-processing chain and the
// cursor pass.
func (s *Session) encodeFrame(enc hal.CommandEncoder, f *Frame, output hal.TextureView, outputFormat gputypes.TextureFormat) error {
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "crt_base_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       s.targets.View(postfx.TargetBase),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{A: 1},
		}},
	})
	err := s.rects.RecordDraws(rp, TargetFormat, s.backgrounds.Buffer(), f.Backgrounds.Count())
	if err == nil && f.Glyphs != nil {
		err = f.Glyphs.RecordBase(rp, TargetFormat)
	}
	if err == nil && f.Intro != nil {
		s.emblem.RecordDraws(rp)
	}
	rp.End()
	if err != nil {
		return err
	}

	if err := s.post.Record(enc, s.plan, s.targets, output, outputFormat); err != nil {
		return err
	}

	if f.Cursor == nil || f.Cursor.Count() == 0 {
		return nil
	}
	rp = enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "crt_cursor_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    output,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	err = s.rects.RecordDraws(rp, outputFormat, s.cursor.Buffer(), f.Cursor.Count())
	rp.End()
	return err
}

func (s *Session) submit(enc hal.CommandEncoder) error {
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		return fmt.Errorf("end encoding: %w", err)
	}
	idx, err := s.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		s.device.FreeCommandBuffer(cmdBuf)
		enc.Destroy()
		return fmt.Errorf("submit: %w", err)
	}
	s.pending = append(s.pending, pendingSubmit{index: idx, encoder: enc, cmdBuf: cmdBuf})
	s.framesEncoded++
	return nil
}

// reclaim frees command buffers and encoders whose submissions completed.
func (s *Session) reclaim() {
	if len(s.pending) == 0 {
		return
	}
	done := s.queue.PollCompleted()
	keep := s.pending[:0]
	for _, p := range s.pending {
		if p.index > done {
			keep = append(keep, p)
			continue
		}
		s.device.FreeCommandBuffer(p.cmdBuf)
		p.encoder.Destroy()
	}
	clear(s.pending[len(keep):])
	s.pending = keep
}

// drain blocks until every pending submission has finished and releases
// them. It runs before any GPU object a pending frame may use is destroyed.
func (s *Session) drain() {
	if len(s.pending) == 0 {
		return
	}
	if err := s.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle", "err", err)
	}
	s.releasePending()
}

// releasePending frees every pending submission. The GPU must be idle.
func (s *Session) releasePending() {
	for _, p := range s.pending {
		s.device.FreeCommandBuffer(p.cmdBuf)
		p.encoder.Destroy()
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}

func (s *Session) ensureSnapshotTarget(w, h uint32) error {
	if s.snapshot.tex != nil && s.snapshotW == w && s.snapshotH == h {
		return nil
	}
	s.snapshot.destroy(s.device)
	t, err := createColorTarget(s.device, w, h,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc, "crt_snapshot")
	if err != nil {
		return err
	}
	s.snapshot, s.snapshotW, s.snapshotH = t, w, h
	return nil
}

func (s *Session) ensureStaging(size uint64) error {
	if s.staging != nil && s.stagingSize >= size {
		return nil
	}
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "crt_snapshot_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	s.staging, s.stagingSize = buf, size
	return nil
}

// Destroy waits for the GPU and releases everything. Safe to call more
// than once.
func (s *Session) Destroy() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle before destroy", "err", err)
	}
	s.releasePending()
	s.pending = nil
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	s.snapshot.destroy(s.device)
	s.cursor.Destroy()
	s.backgrounds.Destroy()
	s.post.Destroy()
	s.emblem.Destroy()
	s.rects.Destroy()
	s.targets.Destroy()
}
