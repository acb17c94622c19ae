package rect

import "github.com/all-yall/crtterm"

// Batcher builds the background batch of a frame. The batch is owned by the
// Batcher and reused across frames.
type Batcher struct {
	batch Batch
}

// NewBatcher returns a Batcher with no preallocated storage.
func NewBatcher() *Batcher {
	return &Batcher{}
}

// run is the scan state of one row: the open run and the last rectangle
// emitted on that row, which a following run of the same color extends.
type run struct {
	start   int
	bg, fg  crtterm.Color
	inverse bool

	emitted   bool
	lastSlot  int
	lastStart int
	lastEnd   int
	lastColor [4]float32
}

// Build scans model row by row and emits one rectangle per maximal run of
// cells sharing an effective background color. Slot 0 always holds the
// viewport rectangle in the theme background; runs whose color equals the
// theme background are covered by it and not emitted.
//
// A run ends when the background field changes, or when the foreground
// field changes while either side is inverse, because inverse cells paint
// their foreground as the background.
func (b *Batcher) Build(model *crtterm.RenderModel, cache *ColorCache, dims crtterm.Dimensions) (*Batch, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}

	rows, cols := model.Rows, model.Cols
	grid := rows * cols
	if grid < 1 {
		grid = 1
	}
	b.batch.EnsureCapacity(1+rows*cols, grid)
	b.batch.Reset()

	g := newGrid(dims)
	sy := g.y(1)
	bgColor := cache.Background()

	b.batch.Write(0, 0, 0, g.x(cols), g.y(rows), bgColor)
	n := 1

	cells := model.Cells
	for row := 0; row < rows; row++ {
		if cols == 0 {
			continue
		}
		base := row * cols * crtterm.CellFields
		y := g.y(row)

		var r run
		r.bg = crtterm.Color(cells[base+crtterm.FieldBackground])
		r.fg = crtterm.Color(cells[base+crtterm.FieldForeground])
		r.inverse = r.fg.Inverse()

		for col := 1; col <= cols; col++ {
			var bg, fg crtterm.Color
			inverse := false
			if col < cols {
				i := base + col*crtterm.CellFields
				bg = crtterm.Color(cells[i+crtterm.FieldBackground])
				fg = crtterm.Color(cells[i+crtterm.FieldForeground])
				inverse = fg.Inverse()
				if bg == r.bg && (fg == r.fg || !(r.inverse || inverse)) {
					continue
				}
			}

			color := cache.Effective(r.bg, r.fg)
			if color != bgColor {
				if r.emitted && r.lastEnd == r.start && r.lastColor == color {
					r.lastEnd = col
					b.batch.Write(r.lastSlot, g.x(r.lastStart), y, g.x(col-r.lastStart), sy, color)
				} else {
					b.batch.Write(n, g.x(r.start), y, g.x(col-r.start), sy, color)
					r.emitted = true
					r.lastSlot = n
					r.lastStart = r.start
					r.lastEnd = col
					r.lastColor = color
					n++
				}
			}
			r.start = col
			r.bg, r.fg, r.inverse = bg, fg, inverse
		}
	}

	b.batch.SetCount(n)
	return &b.batch, nil
}

// grid maps cell coordinates to canvas-normalized coordinates.
type grid struct {
	cellW, cellH     float64
	canvasW, canvasH float64
}

func newGrid(d crtterm.Dimensions) grid {
	return grid{
		cellW:   d.CellWidth,
		cellH:   d.CellHeight,
		canvasW: float64(d.CanvasWidth),
		canvasH: float64(d.CanvasHeight),
	}
}

// x converts a column count to a normalized horizontal extent.
func (g grid) x(cols int) float32 { return float32(float64(cols) * g.cellW / g.canvasW) }

// y converts a row count to a normalized vertical extent.
func (g grid) y(rows int) float32 { return float32(float64(rows) * g.cellH / g.canvasH) }
