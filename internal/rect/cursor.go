package rect

import "github.com/all-yall/crtterm"

// CursorBuilder produces the 0-4 rectangles of the cursor. The glyph layer
// paints block cursors, so a block yields an empty batch.
type CursorBuilder struct {
	batch Batch
}

// NewCursorBuilder returns a builder with room for the largest shape.
func NewCursorBuilder() *CursorBuilder {
	return &CursorBuilder{batch: Batch{data: make([]float32, 4*InstanceFloats)}}
}

// Build returns the cursor batch for cur. A nil cursor yields an empty batch.
func (cb *CursorBuilder) Build(cur *crtterm.Cursor, cache *ColorCache, dims crtterm.Dimensions) *Batch {
	cb.batch.Reset()
	if cur == nil || dims.Validate() != nil {
		return &cb.batch
	}

	cw, ch := dims.CellWidth, dims.CellHeight
	nx := 1 / float64(dims.CanvasWidth)
	ny := 1 / float64(dims.CanvasHeight)
	dpr := cur.Scale()
	span := float64(cur.CellSpan())
	x := float64(cur.X) * cw
	y := float64(cur.Y) * ch
	color := cache.Cursor()

	put := func(slot int, px, py, pw, ph float64) {
		cb.batch.Write(slot, float32(px*nx), float32(py*ny), float32(pw*nx), float32(ph*ny), color)
	}

	switch cur.Style {
	case crtterm.CursorBar:
		put(0, x, y, dpr*cur.Thickness(), ch)
		cb.batch.SetCount(1)
	case crtterm.CursorUnderline:
		put(0, x, y+ch-dpr, span*cw, dpr)
		cb.batch.SetCount(1)
	case crtterm.CursorOutline:
		put(0, x, y, dpr, ch)
		put(1, x, y+ch-dpr, span*cw, dpr)
		put(2, x, y, span*cw, dpr)
		put(3, x+span*cw-dpr, y, dpr, ch)
		cb.batch.SetCount(4)
	}
	return &cb.batch
}
