package emblem

import (
	"math"
	"time"

	"github.com/all-yall/crtterm"
)

// Active reports whether the intro should still be drawn elapsed after the
// renderer was created.
func Active(o crtterm.IntroOptions, elapsed time.Duration) bool {
	return o.Enabled && elapsed >= 0 && elapsed < o.Duration
}

// Rotation returns the emblem's y rotation at elapsed. The emblem holds
// edge-on for o.Delay, then turns a quarter revolution at o.Speed rad/s
// until it faces the viewer.
func Rotation(o crtterm.IntroOptions, elapsed time.Duration) float64 {
	r := (elapsed - o.Delay).Seconds() * o.Speed
	r = math.Max(0, math.Min(r, math.Pi/2))
	return r + math.Pi/2
}

// Transform returns the clip-space matrix for the emblem on a canvas of
// the given device-pixel size.
func Transform(o crtterm.IntroOptions, elapsed time.Duration, width, height int) Mat4 {
	s := Scaling(float32(o.Size/float64(width)), float32(o.Size/float64(height)), 0.5)
	return YRotate(s, Rotation(o, elapsed))
}
