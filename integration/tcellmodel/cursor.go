// Copyright 2026 The crtterm Authors
// SPDX-License-Identifier: MIT

package tcellmodel

import (
	"github.com/gdamore/tcell/v2"

	"github.com/all-yall/crtterm"
)

// CursorStyle maps a tcell cursor shape to a crtterm style. Blinking and
// steady variants map to the same shape.
func CursorStyle(s tcell.CursorStyle) crtterm.CursorStyle {
	switch s {
	case tcell.CursorStyleBlinkingBar, tcell.CursorStyleSteadyBar:
		return crtterm.CursorBar
	case tcell.CursorStyleBlinkingUnderline, tcell.CursorStyleSteadyUnderline:
		return crtterm.CursorUnderline
	default:
		return crtterm.CursorBlock
	}
}

// CursorAt returns the cursor at column x, row y of src, or nil when it is
// hidden or off the grid. A cursor on a wide character spans two cells.
func CursorAt(src Source, x, y int, visible bool, style crtterm.CursorStyle) *crtterm.Cursor {
	cols, rows := src.Size()
	if !visible || x < 0 || y < 0 || x >= cols || y >= rows {
		return nil
	}
	_, _, _, width := src.GetContent(x, y)
	return &crtterm.Cursor{Style: style, X: x, Y: y, DPR: 1, Width: width}
}

// FromSimulation converts a simulation screen's back buffer and cursor.
func FromSimulation(s tcell.SimulationScreen, style crtterm.CursorStyle) (*crtterm.RenderModel, *crtterm.Cursor) {
	x, y, visible := s.GetCursor()
	return Model(s), CursorAt(s, x, y, visible, style)
}
