package crtterm

import "errors"

// Package errors. Resource creation failures are wrapped around these or
// returned as-is; callers match them with errors.Is.
var (
	// ErrModelTooShort is returned when a render model's cell array holds
	// fewer than Rows*Cols*CellFields entries.
	ErrModelTooShort = errors.New("crtterm: render model shorter than grid")

	// ErrInvalidDimensions is returned when canvas or cell sizes are not positive.
	ErrInvalidDimensions = errors.New("crtterm: invalid dimensions")

	// ErrInvalidOptions is returned when effect options are out of range.
	ErrInvalidOptions = errors.New("crtterm: invalid options")

	// ErrStaleTargets is returned when a frame is requested against render
	// targets sized for different dimensions. The frame is skipped.
	ErrStaleTargets = errors.New("crtterm: render targets do not match frame size")

	// ErrShaderInvalid is returned when a WGSL program fails validation.
	ErrShaderInvalid = errors.New("crtterm: shader validation failed")

	// ErrRendererClosed is returned when a destroyed renderer is used.
	ErrRendererClosed = errors.New("crtterm: renderer destroyed")

	// ErrNoHALDevice is returned when a device provider does not expose
	// HAL-level device and queue handles.
	ErrNoHALDevice = errors.New("crtterm: provider has no HAL device")

	// ErrNoAdapter is returned when no GPU adapter could be opened.
	ErrNoAdapter = errors.New("crtterm: no GPU adapter available")
)
