// Package crtterm renders a terminal character grid with a CRT look.
//
// # Overview
//
// The cell backgrounds of a [RenderModel] are batched into the fewest
// possible axis-aligned rectangles (one per maximal same-color run in each
// row) and drawn with a single instanced draw on the GPU. The resulting base
// image is passed through a fixed chain of full-screen passes:
//
//	base (0) -> scanline (2) -> threshold (1) -> blur 1<->3 ... -> recombine -> output
//
// The cursor is drawn last, directly onto the output, so it does not glow.
//
// This package holds the shared data model: the [Color] encoding of cell
// fields, [RenderModel], [Cursor], [Theme], [Dimensions] and the effect
// [Options]. The renderer itself lives in the render sub-package.
//
// # Quick Start
//
//	r, err := render.NewStandalone(crtterm.DefaultTheme(), dims)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	model := crtterm.NewRenderModel(24, 80)
//	model.Fill(5, 10, 20, crtterm.Palette16(1))
//	img, err := r.Snapshot(model, nil, time.Now())
//
// # Logging
//
// crtterm is silent by default. Call [SetLogger] to route diagnostics to
// any [log/slog] handler.
package crtterm
