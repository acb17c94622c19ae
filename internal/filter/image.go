package filter

import (
	"image"
	"math"
)

// Image is a linear float RGBA image, four floats per pixel, row-major.
type Image struct {
	Width, Height int
	Pix           []float32
}

// NewImage returns a transparent black w x h image.
func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]float32, w*h*4)}
}

// At returns the pixel at integer coordinates, clamped to the edges.
func (m *Image) At(x, y int) [4]float32 {
	x = min(max(x, 0), m.Width-1)
	y = min(max(y, 0), m.Height-1)
	i := (y*m.Width + x) * 4
	return [4]float32{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
}

// Set stores a pixel.
func (m *Image) Set(x, y int, c [4]float32) {
	i := (y*m.Width + x) * 4
	m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c[0], c[1], c[2], c[3]
}

// Sample reads the image at pixel-space position (px, py) with bilinear
// filtering, where pixel centers sit at integer + 0.5.
func (m *Image) Sample(px, py float64) [4]float32 {
	fx, fy := px-0.5, py-0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := float32(fx-x0), float32(fy-y0)
	ix, iy := int(x0), int(y0)

	a, b := m.At(ix, iy), m.At(ix+1, iy)
	c, d := m.At(ix, iy+1), m.At(ix+1, iy+1)
	var out [4]float32
	for k := range out {
		top := a[k] + (b[k]-a[k])*tx
		bot := c[k] + (d[k]-c[k])*tx
		out[k] = top + (bot-top)*ty
	}
	return out
}

// Clear fills the image with c.
func (m *Image) Clear(c [4]float32) {
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// RGBA converts to 8-bit, clamping each channel to [0, 1].
func (m *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := range m.Height {
		for x := range m.Width {
			i := (y*m.Width + x) * 4
			o := y*out.Stride + x*4
			for k := range 4 {
				out.Pix[o+k] = to8(m.Pix[i+k])
			}
		}
	}
	return out
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
