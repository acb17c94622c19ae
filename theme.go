package crtterm

import "github.com/gdamore/tcell/v2"

// Theme holds the named colors the renderer paints with.
type Theme struct {
	Background RGBA
	Foreground RGBA
	Cursor     RGBA

	// ANSI is the indexed palette. It holds 16 or 256 entries; lookups past
	// its end fall back to the default color.
	ANSI []RGBA
}

// XtermPalette returns the standard xterm 256-color table.
func XtermPalette() []RGBA {
	p := make([]RGBA, 256)
	for i := range p {
		c, _ := FromTcell(tcell.PaletteColor(i))
		p[i] = c
	}
	return p
}

// DefaultTheme returns the stock deep-blue CRT theme.
func DefaultTheme() *Theme {
	return &Theme{
		Background: OpaqueRGB(0x080A4A),
		Foreground: OpaqueRGB(0xD8C2F7),
		Cursor:     OpaqueRGB(0xD8C2F7),
		ANSI:       XtermPalette(),
	}
}

// Clone returns a deep copy of t.
func (t *Theme) Clone() *Theme {
	c := *t
	c.ANSI = append([]RGBA(nil), t.ANSI...)
	return &c
}

// PaletteColor returns palette entry i and whether it exists.
func (t *Theme) PaletteColor(i int) (RGBA, bool) {
	if i < 0 || i >= len(t.ANSI) {
		return 0, false
	}
	return t.ANSI[i], true
}
