// Copyright 2026 The crtterm Authors
// SPDX-License-Identifier: MIT

// Package tcellmodel adapts tcell content to crtterm render models.
//
// Any tcell cell store (a *tcell.CellBuffer, a tcell.Screen, a
// SimulationScreen) can be turned into a *crtterm.RenderModel and drawn
// with the render package. The data flow is:
//
//	tcell cells -> RenderModel -> render.Renderer -> GPU surface / PNG
//
// # Usage
//
//	var b tcellmodel.Builder
//	model := b.Build(screen)
//	cur := tcellmodel.CursorAt(screen, x, y, true, crtterm.CursorBar)
//	err := renderer.RenderFrame(model, cur, view, time.Now())
//
// # Thread Safety
//
// A Builder is NOT safe for concurrent use; it reuses one model between
// calls.
package tcellmodel
