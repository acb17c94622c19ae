package crtterm

// CursorStyle selects how the cursor is drawn.
type CursorStyle int

const (
	// CursorBlock draws nothing here; the glyph layer paints the cell inverted.
	CursorBlock CursorStyle = iota
	// CursorBar is a thin vertical stripe at the cell's left edge.
	CursorBar
	// CursorUnderline is a thin horizontal stripe at the cell's bottom edge.
	CursorUnderline
	// CursorOutline is a hollow box around the cell.
	CursorOutline
)

func (s CursorStyle) String() string {
	switch s {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	case CursorOutline:
		return "outline"
	default:
		return "unknown"
	}
}

// ParseCursorStyle maps a style name to a CursorStyle.
func ParseCursorStyle(name string) (CursorStyle, bool) {
	switch name {
	case "block":
		return CursorBlock, true
	case "bar":
		return CursorBar, true
	case "underline":
		return CursorUnderline, true
	case "outline":
		return CursorOutline, true
	}
	return CursorBlock, false
}

// Cursor describes the cursor for one frame. A nil *Cursor draws nothing.
type Cursor struct {
	Style CursorStyle

	// X and Y are the cursor's column and row.
	X, Y int

	// DPR is the device pixel ratio. Edge thickness scales with it.
	DPR float64

	// BarWidth is the bar thickness in CSS pixels. Zero means 1.
	BarWidth float64

	// Width is the number of cells covered (2 for wide characters). Zero means 1.
	Width int
}

// CellSpan returns the effective width in cells.
func (c *Cursor) CellSpan() int {
	if c.Width <= 0 {
		return 1
	}
	return c.Width
}

// Scale returns the device pixel ratio, defaulting to 1.
func (c *Cursor) Scale() float64 {
	if c.DPR <= 0 {
		return 1
	}
	return c.DPR
}

// Thickness returns the bar thickness in CSS pixels, defaulting to 1.
func (c *Cursor) Thickness() float64 {
	if c.BarWidth <= 0 {
		return 1
	}
	return c.BarWidth
}
