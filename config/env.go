package config

import (
	"fmt"
	"strconv"

	"github.com/all-yall/crtterm"
)

// Environment variables consulted by Load.
const (
	EnvGlowIntensity   = "CRTTERM_GLOW_INTENSITY"
	EnvPostProcess     = "CRTTERM_POST_PROCESS"
	EnvThemeBackground = "CRTTERM_THEME_BACKGROUND"
	EnvIntro           = "CRTTERM_INTRO"
)

// ApplyEnv overrides values from the environment. lookup is usually
// os.LookupEnv. Set but empty variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		return v, ok && v != ""
	}

	if v, ok := get(EnvGlowIntensity); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvGlowIntensity, err)
		}
		c.Options.GlowIntensity = f
	}
	if v, ok := get(EnvPostProcess); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPostProcess, err)
		}
		c.Options.PostProcess = b
	}
	if v, ok := get(EnvIntro); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIntro, err)
		}
		c.Options.Intro.Enabled = b
	}
	if v, ok := get(EnvThemeBackground); ok {
		bg, err := crtterm.ParseRGBA(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvThemeBackground, err)
		}
		c.Theme.Background = bg
	}
	return c.Options.Validate()
}
