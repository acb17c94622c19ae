// Package config loads crtterm themes and effect options from TOML files,
// xterm-style JSON themes and the environment.
//
// A file looks like:
//
//	[theme]
//	background = "#080A4A"
//	foreground = "#d8c2f7"
//	cursor     = "white"
//	palette    = ["#000000", "#cd0000"]
//	xterm_json = "theme.json"
//
//	[effects]
//	post_process         = true
//	brightness_threshold = 0.5
//	blur_radii           = [1, 3, 5, 5, 7]
//	glow_intensity       = 1.5
//	scanline_period      = "5s"
//
//	[intro]
//	enabled    = true
//	duration   = "2.5s"
//	emblem_obj = "emblem.obj"
//
// Every key is optional; missing keys keep crtterm.DefaultTheme and
// crtterm.DefaultOptions values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/emblem"
)

// Duration is a time.Duration written as a Go duration string ("2.5s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// File mirrors the TOML document. Pointer fields distinguish an absent key
// from a zero value.
type File struct {
	Theme   ThemeSection   `toml:"theme"`
	Effects EffectsSection `toml:"effects"`
	Intro   IntroSection   `toml:"intro"`
}

// ThemeSection holds color strings: W3C names or hex.
type ThemeSection struct {
	Background string   `toml:"background"`
	Foreground string   `toml:"foreground"`
	Cursor     string   `toml:"cursor"`
	Palette    []string `toml:"palette"`
	XtermJSON  string   `toml:"xterm_json"`
}

type EffectsSection struct {
	PostProcess         *bool     `toml:"post_process"`
	BrightnessThreshold *float64  `toml:"brightness_threshold"`
	BlurRadii           []float64 `toml:"blur_radii"`
	GlowIntensity       *float64  `toml:"glow_intensity"`
	ScanlinePeriod      *Duration `toml:"scanline_period"`
	ScanlineSpeed       *float64  `toml:"scanline_speed"`
	ScanlineFrequency   *float64  `toml:"scanline_frequency"`
	ScanlineRowScale    *float64  `toml:"scanline_row_scale"`
	ValidateShaders     *bool     `toml:"validate_shaders"`
}

type IntroSection struct {
	Enabled   *bool     `toml:"enabled"`
	Duration  *Duration `toml:"duration"`
	Delay     *Duration `toml:"delay"`
	Speed     *float64  `toml:"speed"`
	Size      *float64  `toml:"size"`
	EmblemOBJ string    `toml:"emblem_obj"`
}

// Config is the resolved configuration.
type Config struct {
	Theme   *crtterm.Theme
	Options crtterm.Options

	// EmblemPath is the OBJ file of a custom intro emblem, or empty.
	EmblemPath string
}

// Default returns the stock theme and options.
func Default() *Config {
	return &Config{
		Theme:   crtterm.DefaultTheme(),
		Options: crtterm.DefaultOptions(),
	}
}

// Load reads a TOML config file and applies CRTTERM_* environment
// overrides. Relative paths inside the file resolve against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Parse decodes a TOML document. Relative paths resolve against the
// working directory. The environment is not consulted.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data, ".")
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func parse(data []byte, dir string) (*Config, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}
	for _, key := range md.Undecoded() {
		crtterm.Logger().Warn("config: unknown key", "key", key.String())
	}

	cfg := Default()
	if f.Theme.XtermJSON != "" {
		data, err := os.ReadFile(resolve(dir, f.Theme.XtermJSON))
		if err != nil {
			return nil, fmt.Errorf("xterm theme: %w", err)
		}
		if err := ApplyXtermTheme(cfg.Theme, data); err != nil {
			return nil, err
		}
	}
	if err := f.Theme.apply(cfg.Theme); err != nil {
		return nil, err
	}
	f.Effects.apply(&cfg.Options)
	f.Intro.apply(&cfg.Options.Intro)
	if f.Intro.EmblemOBJ != "" {
		cfg.EmblemPath = resolve(dir, f.Intro.EmblemOBJ)
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (s ThemeSection) apply(t *crtterm.Theme) error {
	set := func(dst *crtterm.RGBA, name, v string) error {
		if v == "" {
			return nil
		}
		c, err := crtterm.ParseRGBA(v)
		if err != nil {
			return fmt.Errorf("theme %s: %w", name, err)
		}
		*dst = c
		return nil
	}
	if err := set(&t.Background, "background", s.Background); err != nil {
		return err
	}
	if err := set(&t.Foreground, "foreground", s.Foreground); err != nil {
		return err
	}
	if err := set(&t.Cursor, "cursor", s.Cursor); err != nil {
		return err
	}
	if len(s.Palette) > 256 {
		return fmt.Errorf("theme palette: %d entries, at most 256", len(s.Palette))
	}
	for i, v := range s.Palette {
		if err := set(&t.ANSI[i], fmt.Sprintf("palette[%d]", i), v); err != nil {
			return err
		}
	}
	return nil
}

func (s EffectsSection) apply(o *crtterm.Options) {
	setBool(&o.PostProcess, s.PostProcess)
	setBool(&o.ValidateShaders, s.ValidateShaders)
	setFloat(&o.BrightnessThreshold, s.BrightnessThreshold)
	setFloat(&o.GlowIntensity, s.GlowIntensity)
	setFloat(&o.ScanlineSpeed, s.ScanlineSpeed)
	setFloat(&o.ScanlineFrequency, s.ScanlineFrequency)
	setFloat(&o.ScanlineRowScale, s.ScanlineRowScale)
	setDuration(&o.ScanlinePeriod, s.ScanlinePeriod)
	if s.BlurRadii != nil {
		o.BlurRadii = append([]float64(nil), s.BlurRadii...)
	}
}

func (s IntroSection) apply(o *crtterm.IntroOptions) {
	setBool(&o.Enabled, s.Enabled)
	setDuration(&o.Duration, s.Duration)
	setDuration(&o.Delay, s.Delay)
	setFloat(&o.Speed, s.Speed)
	setFloat(&o.Size, s.Size)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// Emblem loads the configured emblem mesh. It returns nil, nil when no
// custom emblem is configured.
func (c *Config) Emblem() (*emblem.Mesh, error) {
	if c.EmblemPath == "" {
		return nil, nil
	}
	m, err := emblem.LoadOBJFile(c.EmblemPath)
	if err != nil {
		return nil, fmt.Errorf("config: emblem: %w", err)
	}
	return m, nil
}

// RendererOptions returns the options as a single crtterm.Option for the
// render constructors.
func (c *Config) RendererOptions() []crtterm.Option {
	return []crtterm.Option{crtterm.WithOptions(c.Options)}
}
