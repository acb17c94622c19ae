// Copyright 2026 The crtterm Authors
// SPDX-License-Identifier: MIT

package tcellmodel

import (
	"github.com/gdamore/tcell/v2"

	"github.com/all-yall/crtterm"
)

// Source reports cell contents. *tcell.CellBuffer and tcell.Screen both
// implement it.
type Source interface {
	GetContent(x, y int) (primary rune, combining []rune, style tcell.Style, width int)
	Size() (width, height int)
}

// EncodeColor converts a tcell color to the render model encoding. Palette
// colors below 16 use the 16-color mode, the rest of the xterm table the
// 256-color mode. Default and special colors (reset, none) encode as the
// theme default.
func EncodeColor(c tcell.Color) crtterm.Color {
	switch {
	case c == tcell.ColorDefault, c&tcell.ColorSpecial != 0, !c.Valid():
		return crtterm.DefaultColor
	case c.IsRGB():
		r, g, b := c.RGB()
		return crtterm.RGBColor(uint8(r), uint8(g), uint8(b))
	}
	i := int(c - tcell.ColorValid)
	switch {
	case i < 16:
		return crtterm.Palette16(uint8(i))
	case i < 256:
		return crtterm.Palette256(uint8(i))
	default:
		return crtterm.DefaultColor
	}
}

// EncodeStyle returns the foreground and background fields for style.
// Reverse video sets the inverse flag on the foreground.
func EncodeStyle(style tcell.Style) (fg, bg crtterm.Color) {
	tfg, tbg, attrs := style.Decompose()
	fg, bg = EncodeColor(tfg), EncodeColor(tbg)
	if attrs&tcell.AttrReverse != 0 {
		fg = fg.WithInverse()
	}
	return fg, bg
}

// Builder converts sources to render models, reusing the model's storage
// while the grid size stays the same.
type Builder struct {
	model *crtterm.RenderModel
}

// Build fills the model from src and returns it. The returned model is
// overwritten by the next Build call. The attribute field holds the tcell
// attribute mask of each cell.
func (b *Builder) Build(src Source) *crtterm.RenderModel {
	cols, rows := src.Size()
	if b.model == nil || b.model.Rows != rows || b.model.Cols != cols {
		b.model = crtterm.NewRenderModel(rows, cols)
	}
	m := b.model
	for y := range rows {
		for x := range cols {
			glyph, _, style, _ := src.GetContent(x, y)
			fg, bg := EncodeStyle(style)
			m.SetCell(y, x, glyph, fg, bg)
			_, _, attrs := style.Decompose()
			m.Cells[m.Index(y, x)+crtterm.FieldAttrs] = uint32(attrs)
		}
	}
	return m
}

// Model converts src into a freshly allocated render model.
func Model(src Source) *crtterm.RenderModel {
	var b Builder
	return b.Build(src)
}
