package crtterm

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is an encoded cell color as stored in a render model field.
//
// Bits 24-25 hold the mode tag. In ModeP16 and ModeP256 the low 8 bits are a
// palette index; in ModeRGB the low 24 bits are 0xRRGGBB. ModeDefault means
// the theme's default background (or foreground) applies. Bit 26 is the
// inverse-video flag and is only meaningful in a foreground field.
type Color uint32

// Mode tags and masks of the color encoding.
const (
	ModeDefault Color = 0
	ModeP16     Color = 1 << 24
	ModeP256    Color = 2 << 24
	ModeRGB     Color = 3 << 24

	ModeMask    Color = 3 << 24
	IndexMask   Color = 0xFF
	RGBMask     Color = 0xFFFFFF
	FlagInverse Color = 1 << 26
)

// DefaultColor is the encoding of the theme default color.
const DefaultColor Color = ModeDefault

// Palette16 encodes a 16-color palette index.
func Palette16(i uint8) Color { return ModeP16 | Color(i&0x0F) }

// Palette256 encodes a 256-color palette index.
func Palette256(i uint8) Color { return ModeP256 | Color(i) }

// RGBColor encodes a direct 24-bit color.
func RGBColor(r, g, b uint8) Color {
	return ModeRGB | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Mode returns the mode tag of c.
func (c Color) Mode() Color { return c & ModeMask }

// Index returns the palette index of c. Meaningful in palette modes only.
func (c Color) Index() uint8 { return uint8(c & IndexMask) }

// RGB returns the 24-bit value of c. Meaningful in ModeRGB only.
func (c Color) RGB() uint32 { return uint32(c & RGBMask) }

// Inverse reports whether the inverse-video flag is set.
func (c Color) Inverse() bool { return c&FlagInverse != 0 }

// WithInverse returns c with the inverse-video flag set.
func (c Color) WithInverse() Color { return c | FlagInverse }

// Value strips the flag bits, keeping mode and payload.
func (c Color) Value() Color { return c & (ModeMask | RGBMask) }

func (c Color) String() string {
	inv := ""
	if c.Inverse() {
		inv = "+inverse"
	}
	switch c.Mode() {
	case ModeP16:
		return fmt.Sprintf("p16(%d)%s", c.Index(), inv)
	case ModeP256:
		return fmt.Sprintf("p256(%d)%s", c.Index(), inv)
	case ModeRGB:
		return fmt.Sprintf("#%06x%s", c.RGB(), inv)
	default:
		return "default" + inv
	}
}

// RGBA is a packed 0xRRGGBBAA color, the form theme colors are given in.
type RGBA uint32

// NewRGBA packs 8-bit components.
func NewRGBA(r, g, b, a uint8) RGBA {
	return RGBA(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// OpaqueRGB packs a 0xRRGGBB value with full alpha.
func OpaqueRGB(rgb uint32) RGBA { return RGBA(rgb<<8 | 0xFF) }

// Components returns the 8-bit components.
func (c RGBA) Components() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Floats returns the components in [0, 1] as used by the rectangle shader.
func (c RGBA) Floats() [4]float32 {
	r, g, b, a := c.Components()
	return [4]float32{
		float32(r) / 255,
		float32(g) / 255,
		float32(b) / 255,
		float32(a) / 255,
	}
}

// Color converts c to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	r, g, b, a := c.Components()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return NewRGBA(n.R, n.G, n.B, n.A)
}

// FromTcell converts a tcell color to RGBA. Palette colors resolve through
// the xterm 256-color table. Invalid or default colors yield ok=false.
func FromTcell(c tcell.Color) (RGBA, bool) {
	if c == tcell.ColorDefault || !c.Valid() {
		return 0, false
	}
	v := c.Hex()
	if v < 0 {
		return 0, false
	}
	return OpaqueRGB(uint32(v)), true
}

func (c RGBA) String() string {
	return fmt.Sprintf("#%08x", uint32(c))
}

// ParseRGBA parses a color given as a W3C name ("navy", "white") or a hex
// string ("#rgb", "#rrggbb", "#rrggbbaa").
func ParseRGBA(s string) (RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("crtterm: empty color")
	}
	if strings.HasPrefix(s, "#") {
		switch len(s) {
		case 9:
			var v uint32
			if _, err := fmt.Sscanf(s[1:], "%08x", &v); err != nil {
				return 0, fmt.Errorf("crtterm: parse color %q: %w", s, err)
			}
			return RGBA(v), nil
		case 4:
			s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		cf, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("crtterm: parse color %q: %w", s, err)
		}
		r, g, b := cf.RGB255()
		return NewRGBA(r, g, b, 0xFF), nil
	}
	if c, ok := FromTcell(tcell.GetColor(strings.ToLower(s))); ok {
		return c, nil
	}
	return 0, fmt.Errorf("crtterm: unknown color %q", s)
}
