package crtterm

import (
	"fmt"
	"time"
)

// Options holds the tunable visual constants of the effect pipeline. The
// defaults reproduce the stock look; none of them are load-bearing.
type Options struct {
	// PostProcess enables the scanline/glow chain. When false the base
	// image is copied to the output unchanged.
	PostProcess bool

	// BrightnessThreshold is the luminance below which pixels do not glow.
	BrightnessThreshold float64

	// BlurRadii lists the per-iteration blur offsets in device pixels.
	// Iterations ping-pong between two targets.
	BlurRadii []float64

	// GlowIntensity scales the blurred image before it is added to the base.
	GlowIntensity float64

	// ScanlinePeriod is how long one full scanline phase cycle takes.
	ScanlinePeriod time.Duration

	// ScanlineSpeed multiplies the phase angle derived from the period.
	ScanlineSpeed float64

	// ScanlineFrequency is the spatial frequency factor of the scanlines.
	ScanlineFrequency float64

	// ScanlineRowScale divides the row count before it scales the frequency.
	ScanlineRowScale float64

	// Intro configures the rotating emblem shown after startup.
	Intro IntroOptions

	// ValidateShaders runs every WGSL program through the naga front end
	// before handing it to the device.
	ValidateShaders bool
}

// IntroOptions configures the time-bounded startup emblem.
type IntroOptions struct {
	Enabled bool

	// Duration is how long after renderer creation the emblem is drawn.
	Duration time.Duration

	// Delay is how long the emblem stays edge-on before turning.
	Delay time.Duration

	// Speed is the turn rate in radians per second.
	Speed float64

	// Size is the emblem's half extent in device pixels.
	Size float64
}

// DefaultOptions returns the stock effect constants.
func DefaultOptions() Options {
	return Options{
		PostProcess:         true,
		BrightnessThreshold: 0.5,
		BlurRadii:           []float64{1, 3, 5, 5, 7},
		GlowIntensity:       1.5,
		ScanlinePeriod:      5 * time.Second,
		ScanlineSpeed:       2,
		ScanlineFrequency:   25000,
		ScanlineRowScale:    800,
		Intro: IntroOptions{
			Enabled:  true,
			Duration: 2500 * time.Millisecond,
			Delay:    700 * time.Millisecond,
			Speed:    1.2,
			Size:     300,
		},
		ValidateShaders: true,
	}
}

// Validate reports ErrInvalidOptions for values the pipeline cannot use.
func (o *Options) Validate() error {
	switch {
	case o.BrightnessThreshold < 0:
		return fmt.Errorf("%w: brightness threshold %g", ErrInvalidOptions, o.BrightnessThreshold)
	case o.GlowIntensity < 0:
		return fmt.Errorf("%w: glow intensity %g", ErrInvalidOptions, o.GlowIntensity)
	case o.ScanlinePeriod <= 0:
		return fmt.Errorf("%w: scanline period %s", ErrInvalidOptions, o.ScanlinePeriod)
	case o.ScanlineRowScale <= 0:
		return fmt.Errorf("%w: scanline row scale %g", ErrInvalidOptions, o.ScanlineRowScale)
	}
	for i, r := range o.BlurRadii {
		if r < 0 {
			return fmt.Errorf("%w: blur radius %d is %g", ErrInvalidOptions, i, r)
		}
	}
	if o.Intro.Enabled && (o.Intro.Duration < 0 || o.Intro.Size <= 0) {
		return fmt.Errorf("%w: intro duration %s size %g", ErrInvalidOptions, o.Intro.Duration, o.Intro.Size)
	}
	return nil
}

// Option mutates Options. Used by constructors that take variadic options.
type Option func(*Options)

// WithPostProcess enables or disables the effect chain.
func WithPostProcess(enabled bool) Option {
	return func(o *Options) { o.PostProcess = enabled }
}

// WithBrightnessThreshold sets the glow cutoff.
func WithBrightnessThreshold(v float64) Option {
	return func(o *Options) { o.BrightnessThreshold = v }
}

// WithBlurRadii replaces the blur schedule.
func WithBlurRadii(radii ...float64) Option {
	return func(o *Options) { o.BlurRadii = append([]float64(nil), radii...) }
}

// WithGlowIntensity sets the glow multiplier.
func WithGlowIntensity(v float64) Option {
	return func(o *Options) { o.GlowIntensity = v }
}

// WithIntro enables or disables the startup emblem.
func WithIntro(enabled bool) Option {
	return func(o *Options) { o.Intro.Enabled = enabled }
}

// WithShaderValidation enables or disables the naga pass over every WGSL
// program at renderer creation.
func WithShaderValidation(enabled bool) Option {
	return func(o *Options) { o.ValidateShaders = enabled }
}

// WithOptions replaces all options at once, typically with values loaded
// from a config file.
func WithOptions(v Options) Option {
	return func(o *Options) {
		*o = v
		o.BlurRadii = append([]float64(nil), v.BlurRadii...)
	}
}

// Apply returns DefaultOptions with opts applied in order.
func Apply(opts ...Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
