package gpu

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/all-yall/crtterm"
	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.

//go:embed shaders/rect.wgsl
var rectShaderSource string

//go:embed shaders/emblem.wgsl
var emblemShaderSource string

//go:embed shaders/fullscreen.wgsl
var fullscreenShaderSource string

//go:embed shaders/scanline.wgsl
var scanlineShaderSource string

//go:embed shaders/threshold.wgsl
var thresholdShaderSource string

//go:embed shaders/kawase.wgsl
var kawaseShaderSource string

//go:embed shaders/recombine.wgsl
var recombineShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

// fullscreenProgram prepends the shared full-screen vertex stage to a
// fragment-only post-processing source.
func fullscreenProgram(fragment string) string {
	return fullscreenShaderSource + "\n" + fragment
}

// ShaderSources returns every complete WGSL program keyed by name.
func ShaderSources() map[string]string {
	return map[string]string{
		"rect":      rectShaderSource,
		"emblem":    emblemShaderSource,
		"scanline":  fullscreenProgram(scanlineShaderSource),
		"threshold": fullscreenProgram(thresholdShaderSource),
		"kawase":    fullscreenProgram(kawaseShaderSource),
		"recombine": fullscreenProgram(recombineShaderSource),
		"blit":      fullscreenProgram(blitShaderSource),
	}
}

// validateWGSL parses, lowers and validates src with naga. Problems are
// reported as crtterm.ErrShaderInvalid so a broken program fails at
// construction instead of producing a silently black frame.
func validateWGSL(label, src string) error {
	ast, err := naga.Parse(src)
	if err != nil {
		return fmt.Errorf("%w: %s: parse: %v", crtterm.ErrShaderInvalid, label, err)
	}
	mod, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return fmt.Errorf("%w: %s: lower: %v", crtterm.ErrShaderInvalid, label, err)
	}
	problems, err := naga.Validate(mod)
	if err != nil {
		return fmt.Errorf("%w: %s: validate: %v", crtterm.ErrShaderInvalid, label, err)
	}
	if len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Message
		}
		return fmt.Errorf("%w: %s: %s", crtterm.ErrShaderInvalid, label, strings.Join(msgs, "; "))
	}
	return nil
}

// ValidateShaders checks every program. It is run once per renderer when
// Options.ValidateShaders is set.
func ValidateShaders() error {
	for name, src := range ShaderSources() {
		if err := validateWGSL(name, src); err != nil {
			return err
		}
	}
	slogger().Debug("gpu: shaders validated", "programs", len(ShaderSources()))
	return nil
}
