// Copyright 2026 The crtterm Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"time"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/emblem"
	"github.com/all-yall/crtterm/internal/filter"
	"github.com/all-yall/crtterm/internal/gpu"
	"github.com/all-yall/crtterm/internal/postfx"
	"github.com/all-yall/crtterm/internal/rect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func init() {
	crtterm.OnLoggerChange(gpu.SetLogger)
}

// GlyphRecorder draws glyphs into the base pass after the background
// rectangles and before the post-processing chain. The pass targets a
// texture of the given format.
type GlyphRecorder interface {
	RecordBase(rp hal.RenderPassEncoder, format gputypes.TextureFormat) error
}

// Renderer draws a terminal grid with the CRT effect chain.
//
// A Renderer runs either on a HAL device (New, NewFromProvider,
// NewStandalone) or entirely on the CPU (NewCPU). CPU renderers only
// support Snapshot.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	opts  crtterm.Options
	theme *crtterm.Theme
	dims  crtterm.Dimensions

	cache   *rect.ColorCache
	batcher *rect.Batcher
	cursors *rect.CursorBuilder

	session      *gpu.Session
	outputFormat gputypes.TextureFormat
	glyphs       GlyphRecorder

	compositor *filter.Compositor
	plan       []postfx.Pass
	mesh       *emblem.Mesh

	// start is the intro clock origin, the creation time unless
	// SetIntroStart moved it.
	start   time.Time
	release func()
	closed  bool
}

// New creates a renderer on a HAL device and queue owned by the caller.
// The output format of RenderFrame defaults to BGRA8Unorm; see
// SetOutputFormat.
func New(device hal.Device, queue hal.Queue, theme *crtterm.Theme, dims crtterm.Dimensions, opts ...crtterm.Option) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, crtterm.ErrNoHALDevice
	}
	r, err := newRenderer(theme, dims, opts)
	if err != nil {
		return nil, err
	}
	if r.opts.ValidateShaders {
		if err := gpu.ValidateShaders(); err != nil {
			return nil, err
		}
	}
	r.outputFormat = gpu.TargetFormat
	r.session = gpu.NewSession(device, queue, r.opts, nil)
	if err := r.session.Resize(uint32(dims.CanvasWidth), uint32(dims.CanvasHeight)); err != nil {
		r.session.Destroy()
		return nil, err
	}
	return r, nil
}

// NewFromProvider creates a renderer sharing the host's device. The
// provider must expose HalDevice and HalQueue; otherwise ErrNoHALDevice is
// returned. RenderFrame targets the provider's surface format.
func NewFromProvider(p DeviceHandle, theme *crtterm.Theme, dims crtterm.Dimensions, opts ...crtterm.Option) (*Renderer, error) {
	device, queue, err := halFromProvider(p)
	if err != nil {
		return nil, err
	}
	r, err := New(device, queue, theme, dims, opts...)
	if err != nil {
		return nil, err
	}
	if f := p.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		r.outputFormat = f
	}
	return r, nil
}

// NewStandalone opens its own Vulkan device for headless rendering. The
// device is closed by Destroy. It returns an error wrapping ErrNoAdapter
// when no GPU can be opened; callers usually fall back to NewCPU.
func NewStandalone(theme *crtterm.Theme, dims crtterm.Dimensions, opts ...crtterm.Option) (*Renderer, error) {
	sd, err := openStandalone()
	if err != nil {
		return nil, err
	}
	r, err := New(sd.device, sd.queue, theme, dims, opts...)
	if err != nil {
		sd.close()
		return nil, err
	}
	r.release = sd.close
	crtterm.Logger().Info("render: standalone device opened", "adapter", sd.name)
	return r, nil
}

// NewCPU creates a renderer that evaluates the whole chain on the CPU.
// workers is the band parallelism, 0 meaning GOMAXPROCS. Glyph recorders
// are not used in CPU mode.
func NewCPU(theme *crtterm.Theme, dims crtterm.Dimensions, workers int, opts ...crtterm.Option) (*Renderer, error) {
	r, err := newRenderer(theme, dims, opts)
	if err != nil {
		return nil, err
	}
	r.compositor = filter.NewCompositor(workers)
	r.compositor.Ensure(dims.CanvasWidth, dims.CanvasHeight)
	r.plan = postfx.Plan(r.opts)
	r.mesh = emblem.Crystal(6)
	return r, nil
}

func newRenderer(theme *crtterm.Theme, dims crtterm.Dimensions, opts []crtterm.Option) (*Renderer, error) {
	if theme == nil {
		return nil, fmt.Errorf("%w: nil theme", crtterm.ErrInvalidOptions)
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	o := crtterm.Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	theme = theme.Clone()
	return &Renderer{
		opts:    o,
		theme:   theme,
		dims:    dims,
		cache:   rect.NewColorCache(theme),
		batcher: rect.NewBatcher(),
		cursors: rect.NewCursorBuilder(),
		start:   time.Now(),
	}, nil
}

// Options returns the effect options in use.
func (r *Renderer) Options() crtterm.Options { return r.opts }

// Dimensions returns the current canvas and cell sizes.
func (r *Renderer) Dimensions() crtterm.Dimensions { return r.dims }

// IsGPU reports whether the renderer runs on a HAL device.
func (r *Renderer) IsGPU() bool { return r.session != nil }

// Session exposes the GPU session, or nil in CPU mode.
func (r *Renderer) Session() *gpu.Session { return r.session }

// SetTheme replaces the theme. The next frame uses the new colors.
func (r *Renderer) SetTheme(theme *crtterm.Theme) error {
	if theme == nil {
		return fmt.Errorf("%w: nil theme", crtterm.ErrInvalidOptions)
	}
	r.theme = theme.Clone()
	r.cache.Update(r.theme)
	return nil
}

// Theme returns a copy of the active theme.
func (r *Renderer) Theme() *crtterm.Theme { return r.theme.Clone() }

// SetIntroStart moves the origin of the intro clock, which defaults to the
// renderer's creation time. Callers passing a synthetic now to RenderFrame
// or Snapshot set it on the same clock.
func (r *Renderer) SetIntroStart(t time.Time) { r.start = t }

// SetOutputFormat sets the texture format of views passed to RenderFrame.
func (r *Renderer) SetOutputFormat(f gputypes.TextureFormat) { r.outputFormat = f }

// SetGlyphRecorder installs the glyph hook. nil removes it.
func (r *Renderer) SetGlyphRecorder(g GlyphRecorder) { r.glyphs = g }

// SetEmblemMesh replaces the intro emblem. nil restores the built-in crystal.
func (r *Renderer) SetEmblemMesh(mesh *emblem.Mesh) {
	if r.session != nil {
		r.session.SetEmblemMesh(mesh)
		return
	}
	if mesh == nil {
		mesh = emblem.Crystal(6)
	}
	r.mesh = mesh
}

// Resize records new dimensions and recreates the render targets. Frames
// built for the old size that race with a resize are skipped with
// ErrStaleTargets.
func (r *Renderer) Resize(dims crtterm.Dimensions) error {
	if r.closed {
		return crtterm.ErrRendererClosed
	}
	if err := dims.Validate(); err != nil {
		return err
	}
	r.dims = dims
	if r.session != nil {
		return r.session.Resize(uint32(dims.CanvasWidth), uint32(dims.CanvasHeight))
	}
	r.compositor.Ensure(dims.CanvasWidth, dims.CanvasHeight)
	return nil
}

// RenderFrame draws model and cursor into output and submits the frame.
// now drives the scanline phase and the intro timing. cursor may be nil.
func (r *Renderer) RenderFrame(model *crtterm.RenderModel, cursor *crtterm.Cursor, output hal.TextureView, now time.Time) error {
	if r.closed {
		return crtterm.ErrRendererClosed
	}
	if r.session == nil {
		return fmt.Errorf("%w: RenderFrame on a CPU renderer", crtterm.ErrNoHALDevice)
	}
	f, err := r.frame(model, cursor, now)
	if err != nil {
		return err
	}
	return r.session.RenderFrame(f, output, r.outputFormat)
}

// Snapshot draws one frame offscreen and returns it as RGBA. On the GPU it
// waits for the frame to finish.
func (r *Renderer) Snapshot(model *crtterm.RenderModel, cursor *crtterm.Cursor, now time.Time) (*image.RGBA, error) {
	if r.closed {
		return nil, crtterm.ErrRendererClosed
	}
	f, err := r.frame(model, cursor, now)
	if err != nil {
		return nil, err
	}
	if r.session != nil {
		return r.session.Snapshot(f)
	}
	return r.snapshotCPU(f)
}

// frame builds the per-frame inputs shared by both paths.
func (r *Renderer) frame(model *crtterm.RenderModel, cursor *crtterm.Cursor, now time.Time) (*gpu.Frame, error) {
	bg, err := r.batcher.Build(model, r.cache, r.dims)
	if err != nil {
		return nil, err
	}
	f := &gpu.Frame{
		Backgrounds: bg,
		Cursor:      r.cursors.Build(cursor, r.cache, r.dims),
		Dims:        r.dims,
		Params:      postfx.NewParams(r.dims, r.opts, now),
		Glyphs:      r.glyphs,
	}
	if elapsed := now.Sub(r.start); emblem.Active(r.opts.Intro, elapsed) {
		m := emblem.Transform(r.opts.Intro, elapsed, r.dims.CanvasWidth, r.dims.CanvasHeight)
		f.Intro = &m
	}
	return f, nil
}

func (r *Renderer) snapshotCPU(f *gpu.Frame) (*image.RGBA, error) {
	base := r.compositor.Target(postfx.TargetBase)
	if base == nil || base.Width != f.Dims.CanvasWidth || base.Height != f.Dims.CanvasHeight {
		return nil, crtterm.ErrStaleTargets
	}
	base.Clear([4]float32{0, 0, 0, 1})
	filter.FillRects(base, f.Backgrounds)
	if f.Intro != nil {
		filter.FillMesh(base, r.mesh, *f.Intro)
	}
	out, err := r.compositor.Run(r.plan, f.Params, r.opts)
	if err != nil {
		return nil, err
	}
	filter.FillRects(out, f.Cursor)
	return out.RGBA(), nil
}

// Destroy releases all resources, including a standalone device. Safe to
// call more than once.
func (r *Renderer) Destroy() {
	if r.closed {
		return
	}
	r.closed = true
	if r.session != nil {
		r.session.Destroy()
	}
	if r.compositor != nil {
		r.compositor.Close()
	}
	if r.release != nil {
		r.release()
		r.release = nil
	}
}
