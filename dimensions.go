package crtterm

import "fmt"

// Dimensions are the device-pixel sizes supplied by the windowing layer.
type Dimensions struct {
	// CanvasWidth and CanvasHeight are the drawable size in device pixels.
	CanvasWidth, CanvasHeight int

	// CellWidth and CellHeight are one grid cell in device pixels.
	CellWidth, CellHeight float64
}

// Validate reports ErrInvalidDimensions for non-positive sizes.
func (d Dimensions) Validate() error {
	if d.CanvasWidth <= 0 || d.CanvasHeight <= 0 || d.CellWidth <= 0 || d.CellHeight <= 0 {
		return fmt.Errorf("%w: canvas %dx%d cell %gx%g", ErrInvalidDimensions,
			d.CanvasWidth, d.CanvasHeight, d.CellWidth, d.CellHeight)
	}
	return nil
}

// GridSize returns the number of whole columns and rows that fit the canvas.
func (d Dimensions) GridSize() (cols, rows int) {
	if d.CellWidth <= 0 || d.CellHeight <= 0 {
		return 0, 0
	}
	return int(float64(d.CanvasWidth) / d.CellWidth), int(float64(d.CanvasHeight) / d.CellHeight)
}

// ForGrid returns dimensions for a cols x rows grid of cells of the given size.
func ForGrid(cols, rows int, cellW, cellH float64) Dimensions {
	return Dimensions{
		CanvasWidth:  int(float64(cols) * cellW),
		CanvasHeight: int(float64(rows) * cellH),
		CellWidth:    cellW,
		CellHeight:   cellH,
	}
}
