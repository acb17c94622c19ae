package crtterm

import "fmt"

// Field offsets within one cell record of a RenderModel.
const (
	FieldGlyph      = 0
	FieldBackground = 1
	FieldForeground = 2
	FieldAttrs      = 3

	// CellFields is the number of uint32 fields per cell.
	CellFields = 4
)

// RenderModel is the dense, row-major per-cell attribute buffer produced by
// the terminal state. Cell (row, col) occupies
// Cells[(row*Cols+col)*CellFields : (row*Cols+col+1)*CellFields].
//
// The renderer reads a model once per frame and never mutates it.
type RenderModel struct {
	Rows  int
	Cols  int
	Cells []uint32
}

// NewRenderModel allocates a model with every cell in default colors.
func NewRenderModel(rows, cols int) *RenderModel {
	return &RenderModel{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]uint32, rows*cols*CellFields),
	}
}

// Validate checks that the cell array covers the whole grid.
func (m *RenderModel) Validate() error {
	if m.Rows < 0 || m.Cols < 0 {
		return fmt.Errorf("%w: %dx%d grid", ErrInvalidDimensions, m.Cols, m.Rows)
	}
	if need := m.Rows * m.Cols * CellFields; len(m.Cells) < need {
		return fmt.Errorf("%w: have %d fields, need %d", ErrModelTooShort, len(m.Cells), need)
	}
	return nil
}

// Index returns the offset of the first field of cell (row, col).
func (m *RenderModel) Index(row, col int) int {
	return (row*m.Cols + col) * CellFields
}

// Background returns the encoded background of cell (row, col).
func (m *RenderModel) Background(row, col int) Color {
	return Color(m.Cells[m.Index(row, col)+FieldBackground])
}

// Foreground returns the encoded foreground (with flags) of cell (row, col).
func (m *RenderModel) Foreground(row, col int) Color {
	return Color(m.Cells[m.Index(row, col)+FieldForeground])
}

// SetCell stores glyph, foreground and background for cell (row, col).
func (m *RenderModel) SetCell(row, col int, glyph rune, fg, bg Color) {
	i := m.Index(row, col)
	m.Cells[i+FieldGlyph] = uint32(glyph)
	m.Cells[i+FieldBackground] = uint32(bg)
	m.Cells[i+FieldForeground] = uint32(fg)
}

// Fill sets every cell of row from column start (inclusive) to end
// (exclusive) to the given background, keeping other fields.
func (m *RenderModel) Fill(row, start, end int, bg Color) {
	for col := start; col < end; col++ {
		m.Cells[m.Index(row, col)+FieldBackground] = uint32(bg)
	}
}

// Reset clears every cell to default colors.
func (m *RenderModel) Reset() {
	clear(m.Cells)
}
