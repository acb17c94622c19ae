package filter

import (
	"fmt"
	"math"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/parallel"
	"github.com/all-yall/crtterm/internal/postfx"
)

// Channel phase offsets of the scanline program, red then green then blue.
const (
	phaseRed   = 4.188
	phaseGreen = 2.094
	phaseBlue  = 0
)

// Compositor evaluates a postfx.Plan on the CPU. Targets are kept between
// runs and reallocated only when the size changes.
//
// A Compositor is not safe for concurrent use; the pool inside it is.
type Compositor struct {
	pool    *parallel.Pool
	targets [postfx.TargetCount]*Image
}

// NewCompositor creates a compositor using workers goroutines (0 means
// GOMAXPROCS).
func NewCompositor(workers int) *Compositor {
	return &Compositor{pool: parallel.NewPool(workers)}
}

// Close stops the worker pool.
func (c *Compositor) Close() { c.pool.Close() }

// Target returns offscreen target i. Target 0 is where callers draw the
// base image before Run.
func (c *Compositor) Target(i int) *Image { return c.targets[i] }

// Ensure sizes all targets to w x h, keeping them when the size matches.
func (c *Compositor) Ensure(w, h int) {
	if c.targets[0] != nil && c.targets[0].Width == w && c.targets[0].Height == h {
		return
	}
	for i := range c.targets {
		c.targets[i] = NewImage(w, h)
	}
}

// Run executes plan over the targets and returns the output image. Target
// 0 must already hold the base image.
func (c *Compositor) Run(plan []postfx.Pass, p postfx.Params, opts crtterm.Options) (*Image, error) {
	if c.targets[0] == nil {
		return nil, fmt.Errorf("filter: compositor targets not allocated")
	}
	w, h := c.targets[0].Width, c.targets[0].Height
	var out *Image
	for _, pass := range plan {
		var dst *Image
		if pass.Dst == postfx.Output {
			out = NewImage(w, h)
			dst = out
		} else {
			dst = c.targets[pass.Dst]
		}
		if err := c.apply(pass, dst, p, opts); err != nil {
			return nil, err
		}
	}
	if out == nil {
		return nil, fmt.Errorf("filter: plan never writes the output")
	}
	return out, nil
}

func (c *Compositor) apply(pass postfx.Pass, dst *Image, p postfx.Params, opts crtterm.Options) error {
	src := c.targets[pass.Src]
	var shade func(x, y int) [4]float32
	switch pass.Kind {
	case postfx.Scanline:
		shade = scanline(src, p, opts)
	case postfx.Threshold:
		shade = threshold(src, opts.BrightnessThreshold)
	case postfx.Blur:
		shade = kawase(src, pass.Radius)
	case postfx.Recombine:
		shade = recombine(src, c.targets[pass.Src2], opts.GlowIntensity)
	case postfx.Copy:
		shade = func(x, y int) [4]float32 {
			v := src.At(x, y)
			return [4]float32{v[0], v[1], v[2], 1}
		}
	default:
		return fmt.Errorf("filter: unknown pass %v", pass.Kind)
	}
	c.pool.Bands(dst.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range dst.Width {
				dst.Set(x, y, shade(x, y))
			}
		}
	})
	return nil
}

func scanline(src *Image, p postfx.Params, opts crtterm.Options) func(x, y int) [4]float32 {
	m := p.Frequency(opts)
	freq := opts.ScanlineFrequency
	h := float64(src.Height)
	wave := func(v, offset float64) float32 {
		return float32(1 + math.Sin(v*m*freq+offset+p.Time))
	}
	return func(x, y int) [4]float32 {
		o := src.At(x, y)
		v := (float64(y) + 0.5) / h
		r := (o[0] + 0.01*o[1] + 0.01*o[2]) * wave(v, phaseRed)
		g := (0.01*o[0] + o[1] + 0.01*o[2]) * wave(v, phaseGreen)
		b := (0.01*o[0] + 0.01*o[1] + o[2]) * wave(v, phaseBlue)
		// Each channel's stripe leaks 1% into the other two.
		return [4]float32{
			r + 0.01*g + 0.01*b,
			0.01*r + g + 0.01*b,
			0.01*r + 0.01*g + b,
			1,
		}
	}
}

func threshold(src *Image, cutoff float64) func(x, y int) [4]float32 {
	return func(x, y int) [4]float32 {
		c := src.At(x, y)
		luma := 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
		if float64(luma) < cutoff {
			return [4]float32{0, 0, 0, 1}
		}
		return [4]float32{c[0], c[1], c[2], 1}
	}
}

func kawase(src *Image, radius float64) func(x, y int) [4]float32 {
	return func(x, y int) [4]float32 {
		cx, cy := float64(x)+0.5, float64(y)+0.5
		var sum [4]float32
		for _, d := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			s := src.Sample(cx+d[0]*radius, cy+d[1]*radius)
			for k := range sum {
				sum[k] += s[k]
			}
		}
		return [4]float32{sum[0] * 0.25, sum[1] * 0.25, sum[2] * 0.25, 1}
	}
}

func recombine(base, glow *Image, intensity float64) func(x, y int) [4]float32 {
	k := float32(intensity)
	return func(x, y int) [4]float32 {
		b, g := base.At(x, y), glow.At(x, y)
		return [4]float32{b[0] + g[0]*k, b[1] + g[1]*k, b[2] + g[2]*k, 1}
	}
}
