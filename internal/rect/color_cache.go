package rect

import "github.com/all-yall/crtterm"

// ColorCache holds the float form of the current theme. It is refreshed only
// by Update, never per frame.
type ColorCache struct {
	background [4]float32
	foreground [4]float32
	cursor     [4]float32
	palette    [][4]float32

	generation uint64
}

// NewColorCache returns a cache primed with theme.
func NewColorCache(theme *crtterm.Theme) *ColorCache {
	c := &ColorCache{}
	c.Update(theme)
	return c
}

// Update recomputes every cached color from theme. A nil theme selects
// crtterm.DefaultTheme.
func (c *ColorCache) Update(theme *crtterm.Theme) {
	if theme == nil {
		theme = crtterm.DefaultTheme()
	}
	c.background = theme.Background.Floats()
	c.foreground = theme.Foreground.Floats()
	c.cursor = theme.Cursor.Floats()

	if cap(c.palette) < len(theme.ANSI) {
		c.palette = make([][4]float32, len(theme.ANSI))
	}
	c.palette = c.palette[:len(theme.ANSI)]
	for i, p := range theme.ANSI {
		c.palette[i] = p.Floats()
	}
	c.generation++
}

// Generation counts Update calls. Consumers compare it to detect a theme
// change they have not yet acted on.
func (c *ColorCache) Generation() uint64 { return c.generation }

// Background returns the theme default background.
func (c *ColorCache) Background() [4]float32 { return c.background }

// Foreground returns the theme default foreground.
func (c *ColorCache) Foreground() [4]float32 { return c.foreground }

// Cursor returns the theme cursor color.
func (c *ColorCache) Cursor() [4]float32 { return c.cursor }

// Resolve converts an encoded color to floats. Default colors and palette
// indices missing from the theme resolve to fallback.
func (c *ColorCache) Resolve(v crtterm.Color, fallback [4]float32) [4]float32 {
	switch v.Mode() {
	case crtterm.ModeP16, crtterm.ModeP256:
		if i := int(v.Index()); i < len(c.palette) {
			return c.palette[i]
		}
		return fallback
	case crtterm.ModeRGB:
		return crtterm.OpaqueRGB(v.RGB()).Floats()
	default:
		return fallback
	}
}

// Effective returns the color a cell's background is painted with. The
// inverse flag on fg selects the foreground field (defaulting to the theme
// foreground); otherwise bg is used (defaulting to the theme background).
func (c *ColorCache) Effective(bg, fg crtterm.Color) [4]float32 {
	if fg.Inverse() {
		return c.Resolve(fg, c.foreground)
	}
	return c.Resolve(bg, c.background)
}
