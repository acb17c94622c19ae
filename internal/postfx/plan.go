// Package postfx describes the CRT post-processing chain independently of
// how it is executed. The GPU pipeline and the CPU reference compositor both
// walk the same Plan and feed their programs the same parameters.
package postfx

import (
	"fmt"

	"github.com/all-yall/crtterm"
)

// Kind identifies the program a pass runs.
type Kind int

const (
	// Scanline modulates each channel with a moving sinusoid.
	Scanline Kind = iota
	// Threshold keeps pixels at or above the brightness cutoff.
	Threshold
	// Blur averages four diagonal neighbors at a given radius.
	Blur
	// Recombine adds the scaled glow to the scanlined base.
	Recombine
	// Copy passes the base image through unchanged.
	Copy
)

func (k Kind) String() string {
	switch k {
	case Scanline:
		return "scanline"
	case Threshold:
		return "threshold"
	case Blur:
		return "blur"
	case Recombine:
		return "recombine"
	case Copy:
		return "copy"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Render target indices. Output is the caller's view, not one of the four
// offscreen targets.
const (
	TargetBase     = 0
	TargetBright   = 1
	TargetScanned  = 2
	TargetPingPong = 3
	TargetCount    = 4

	Output = -1
)

// Pass is one full-screen draw: read Src (and Src2 for Recombine), write Dst.
type Pass struct {
	Kind   Kind
	Src    int
	Src2   int
	Dst    int
	Radius float64
}

// Sources returns the targets the pass samples.
func (p Pass) Sources() []int {
	if p.Kind == Recombine {
		return []int{p.Src, p.Src2}
	}
	return []int{p.Src}
}

func (p Pass) String() string {
	dst := fmt.Sprint(p.Dst)
	if p.Dst == Output {
		dst = "out"
	}
	switch p.Kind {
	case Recombine:
		return fmt.Sprintf("%s(%d+%d->%s)", p.Kind, p.Src, p.Src2, dst)
	case Blur:
		return fmt.Sprintf("%s[%g](%d->%s)", p.Kind, p.Radius, p.Src, dst)
	default:
		return fmt.Sprintf("%s(%d->%s)", p.Kind, p.Src, dst)
	}
}

// Plan returns the ordered passes for opts.
//
// Scanlines come first so the glow is extracted from the scanlined image,
// and recombine reads that same pre-threshold image as its base layer.
// Blur iterations alternate 1->3, 3->1, ...; recombine reads whichever
// target the last iteration wrote.
func Plan(opts crtterm.Options) []Pass {
	if !opts.PostProcess {
		return []Pass{{Kind: Copy, Src: TargetBase, Dst: Output}}
	}
	passes := make([]Pass, 0, 3+len(opts.BlurRadii))
	passes = append(passes,
		Pass{Kind: Scanline, Src: TargetBase, Dst: TargetScanned},
		Pass{Kind: Threshold, Src: TargetScanned, Dst: TargetBright},
	)
	src, dst := TargetBright, TargetPingPong
	for _, r := range opts.BlurRadii {
		passes = append(passes, Pass{Kind: Blur, Src: src, Dst: dst, Radius: r})
		src, dst = dst, src
	}
	return append(passes, Pass{Kind: Recombine, Src: TargetScanned, Src2: src, Dst: Output})
}
