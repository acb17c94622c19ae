package postfx

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/all-yall/crtterm"
)

// UniformSize is the byte size of every pass's uniform block. All programs
// share one 32-byte layout so a single buffer shape serves every pass.
const UniformSize = 32

// Params are the frame-dependent inputs of the chain.
type Params struct {
	// Width and Height are the target size in device pixels.
	Width, Height int

	// CellWidth and CellHeight are one grid cell in device pixels.
	CellWidth, CellHeight float64

	// Time is the scanline phase angle in radians.
	Time float64
}

// NewParams derives the frame parameters from the device dimensions and
// wall-clock time.
func NewParams(dims crtterm.Dimensions, opts crtterm.Options, now time.Time) Params {
	return Params{
		Width:      dims.CanvasWidth,
		Height:     dims.CanvasHeight,
		CellWidth:  dims.CellWidth,
		CellHeight: dims.CellHeight,
		Time:       Phase(now, opts),
	}
}

// Phase maps wall-clock time to the scanline phase: the position within
// the scanline period as an angle, scaled by the scanline speed.
func Phase(now time.Time, opts crtterm.Options) float64 {
	period := opts.ScanlinePeriod.Milliseconds()
	if period <= 0 {
		return 0
	}
	ms := now.UnixMilli() % period
	if ms < 0 {
		ms += period
	}
	return float64(ms) / float64(period) * 2 * math.Pi * opts.ScanlineSpeed
}

// Frequency returns the per-frame scanline spatial multiplier: rows on
// screen divided by the configured row scale.
func (p Params) Frequency(opts crtterm.Options) float64 {
	if p.CellHeight <= 0 {
		return 0
	}
	return (float64(p.Height) / p.CellHeight) / opts.ScanlineRowScale
}

// Uniforms packs the uniform block for pass.
//
// Layouts (all little-endian f32):
//
//	scanline:  resolution.xy, cell_size.xy, time, frequency, row_scale, pad
//	threshold: cutoff, pad x7
//	blur:      resolution.xy, radius, pad x5
//	recombine: intensity, pad x7
//	copy:      unused
func Uniforms(dst []byte, pass Pass, p Params, opts crtterm.Options) []byte {
	if cap(dst) < UniformSize {
		dst = make([]byte, UniformSize)
	}
	dst = dst[:UniformSize]
	clear(dst)
	put := func(i int, v float64) {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(float32(v)))
	}
	switch pass.Kind {
	case Scanline:
		put(0, float64(p.Width))
		put(1, float64(p.Height))
		put(2, p.CellWidth)
		put(3, p.CellHeight)
		put(4, p.Time)
		put(5, opts.ScanlineFrequency)
		put(6, opts.ScanlineRowScale)
	case Threshold:
		put(0, opts.BrightnessThreshold)
	case Blur:
		put(0, float64(p.Width))
		put(1, float64(p.Height))
		put(2, pass.Radius)
	case Recombine:
		put(0, opts.GlowIntensity)
	}
	return dst
}
