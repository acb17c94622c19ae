package filter

import (
	"image"
	"math"

	"github.com/all-yall/crtterm/internal/emblem"
	"github.com/all-yall/crtterm/internal/rect"
	"golang.org/x/image/vector"
)

// FillRects draws the valid instances of b over dst. Instance rectangles
// are in canvas-normalized units; a pixel is covered when its center lies
// inside, which matches GPU rasterization of the instanced quads. Colors
// are straight alpha and composited source-over.
func FillRects(dst *Image, b *rect.Batch) {
	w, h := float64(dst.Width), float64(dst.Height)
	for i := range b.Count() {
		in := b.Instance(i)
		x0 := pixelStart(float64(in[0]) * w)
		y0 := pixelStart(float64(in[1]) * h)
		x1 := pixelStart(float64(in[0]+in[2]) * w)
		y1 := pixelStart(float64(in[1]+in[3]) * h)
		x0, x1 = max(x0, 0), min(x1, dst.Width)
		y0, y1 = max(y0, 0), min(y1, dst.Height)
		a := in[7]
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				p := (y*dst.Width + x) * 4
				for k := range 3 {
					dst.Pix[p+k] = in[4+k]*a + dst.Pix[p+k]*(1-a)
				}
				dst.Pix[p+3] = a + dst.Pix[p+3]*(1-a)
			}
		}
	}
}

// pixelStart returns the first pixel whose center is at or past edge.
func pixelStart(edge float64) int {
	return int(math.Ceil(edge - 0.5))
}

// FillMesh projects mesh through m and paints it white over dst. Each
// triangle is rasterized on its own so front and back faces of a closed
// mesh do not cancel.
func FillMesh(dst *Image, mesh *emblem.Mesh, m emblem.Mat4) {
	w, h := dst.Width, dst.Height
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z := vector.NewRasterizer(w, h)
	toPixel := func(i int) (float32, float32) {
		p := mesh.Positions[i*3 : i*3+3]
		cx, cy, _, cw := m.Apply(p[0], p[1], p[2])
		if cw == 0 {
			cw = 1
		}
		return (cx/cw + 1) / 2 * float32(w), (1 - cy/cw) / 2 * float32(h)
	}
	for t := 0; t+2 < mesh.VertexCount(); t += 3 {
		z.Reset(w, h)
		ax, ay := toPixel(t)
		bx, by := toPixel(t + 1)
		cx, cy := toPixel(t + 2)
		z.MoveTo(ax, ay)
		z.LineTo(bx, by)
		z.LineTo(cx, cy)
		z.ClosePath()
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	}
	for y := range h {
		for x := range w {
			a := float32(mask.Pix[y*mask.Stride+x]) / 255
			if a == 0 {
				continue
			}
			p := (y*w + x) * 4
			for k := range 4 {
				dst.Pix[p+k] = a + dst.Pix[p+k]*(1-a)
			}
		}
	}
}
