package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/all-yall/crtterm"
)

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, crtterm.DefaultOptions(), cfg.Options)
	assert.Equal(t, crtterm.DefaultTheme(), cfg.Theme)
	assert.Empty(t, cfg.EmblemPath)
}

func TestParseEffects(t *testing.T) {
	cfg, err := Parse([]byte(`
[effects]
post_process = false
brightness_threshold = 0.25
blur_radii = [1, 2, 3]
glow_intensity = 0.75
scanline_period = "2.5s"
scanline_row_scale = 3

[intro]
enabled = false
delay = "100ms"
`))
	require.NoError(t, err)

	o := cfg.Options
	assert.False(t, o.PostProcess)
	assert.Equal(t, 0.25, o.BrightnessThreshold)
	assert.Equal(t, []float64{1, 2, 3}, o.BlurRadii)
	assert.Equal(t, 0.75, o.GlowIntensity)
	assert.Equal(t, 2500*time.Millisecond, o.ScanlinePeriod)
	assert.Equal(t, 3.0, o.ScanlineRowScale)
	assert.False(t, o.Intro.Enabled)
	assert.Equal(t, 100*time.Millisecond, o.Intro.Delay)

	def := crtterm.DefaultOptions()
	assert.Equal(t, def.ScanlineSpeed, o.ScanlineSpeed, "absent keys keep defaults")
	assert.Equal(t, def.Intro.Duration, o.Intro.Duration)
}

func TestParseEmptyBlurList(t *testing.T) {
	cfg, err := Parse([]byte("[effects]\nblur_radii = []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Options.BlurRadii)
}

func TestParseTheme(t *testing.T) {
	cfg, err := Parse([]byte(`
[theme]
background = "#102030"
foreground = "#abc"
cursor = "white"
palette = ["#ff0000", "navy"]
`))
	require.NoError(t, err)

	assert.Equal(t, crtterm.OpaqueRGB(0x102030), cfg.Theme.Background)
	assert.Equal(t, crtterm.OpaqueRGB(0xAABBCC), cfg.Theme.Foreground)
	assert.Equal(t, crtterm.OpaqueRGB(0xFFFFFF), cfg.Theme.Cursor)
	assert.Equal(t, crtterm.OpaqueRGB(0xFF0000), cfg.Theme.ANSI[0])
	assert.Equal(t, crtterm.OpaqueRGB(0x000080), cfg.Theme.ANSI[1])
	assert.Equal(t, crtterm.DefaultTheme().ANSI[2], cfg.Theme.ANSI[2])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "[effects\n"},
		{"bad color", "[theme]\nbackground = \"not-a-color\"\n"},
		{"bad duration", "[effects]\nscanline_period = \"soon\"\n"},
		{"negative glow", "[effects]\nglow_intensity = -1.0\n"},
		{"zero period", "[effects]\nscanline_period = \"0s\"\n"},
		{"missing xterm file", "[theme]\nxterm_json = \"does-not-exist.json\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseInvalidOptionsIsSentinel(t *testing.T) {
	_, err := Parse([]byte("[effects]\nbrightness_threshold = -0.5\n"))
	assert.ErrorIs(t, err, crtterm.ErrInvalidOptions)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "crt.toml"))
	require.NoError(t, err)

	// The xterm import applies first, explicit theme keys win.
	assert.Equal(t, crtterm.OpaqueRGB(0x002b36), cfg.Theme.Background)
	assert.Equal(t, crtterm.OpaqueRGB(0xFFFFFF), cfg.Theme.Foreground)
	assert.Equal(t, crtterm.OpaqueRGB(0x00FF00), cfg.Theme.Cursor)
	assert.Equal(t, crtterm.OpaqueRGB(0xdc322f), cfg.Theme.ANSI[1])
	assert.Equal(t, crtterm.OpaqueRGB(0xfdf6e3), cfg.Theme.ANSI[15])
	assert.Equal(t, crtterm.OpaqueRGB(0x222222), cfg.Theme.ANSI[17])

	assert.Equal(t, []float64{2, 4}, cfg.Options.BlurRadii)
	assert.Equal(t, 1500*time.Millisecond, cfg.Options.Intro.Duration)
	assert.Equal(t, filepath.Join("testdata", "tri.obj"), cfg.EmblemPath)

	mesh, err := cfg.Emblem()
	require.NoError(t, err)
	require.NotNil(t, mesh)
	assert.Equal(t, 3, mesh.VertexCount())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)
}

func TestEmblemUnset(t *testing.T) {
	mesh, err := Default().Emblem()
	assert.NoError(t, err)
	assert.Nil(t, mesh)
}

func TestRendererOptions(t *testing.T) {
	cfg := Default()
	cfg.Options.GlowIntensity = 3
	got := crtterm.Apply(cfg.RendererOptions()...)
	assert.Equal(t, 3.0, got.GlowIntensity)
}
