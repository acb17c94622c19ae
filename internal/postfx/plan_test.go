package postfx

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/all-yall/crtterm"
)

func TestPlanDefault(t *testing.T) {
	got := Plan(crtterm.DefaultOptions())
	want := []string{
		"scanline(0->2)",
		"threshold(2->1)",
		"blur[1](1->3)",
		"blur[3](3->1)",
		"blur[5](1->3)",
		"blur[5](3->1)",
		"blur[7](1->3)",
		"recombine(2+3->out)",
	}
	if len(got) != len(want) {
		t.Fatalf("Plan() has %d passes, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("pass %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPlanEvenBlurEndsOnBright(t *testing.T) {
	opts := crtterm.Apply(crtterm.WithBlurRadii(2, 4))
	p := Plan(opts)
	last := p[len(p)-1]
	if last.Kind != Recombine || last.Src2 != TargetBright {
		t.Errorf("last pass = %s, want glow from target 1", last)
	}
}

func TestPlanNoBlurUsesThresholdOutput(t *testing.T) {
	opts := crtterm.Apply(crtterm.WithBlurRadii())
	p := Plan(opts)
	if len(p) != 3 {
		t.Fatalf("Plan() = %v", p)
	}
	if p[2].Src2 != TargetBright {
		t.Errorf("recombine glow = %d, want %d", p[2].Src2, TargetBright)
	}
}

func TestPlanDisabled(t *testing.T) {
	p := Plan(crtterm.Apply(crtterm.WithPostProcess(false)))
	if len(p) != 1 || p[0].Kind != Copy || p[0].Dst != Output {
		t.Errorf("Plan() = %v, want single copy to output", p)
	}
}

func TestPlanPassesChainReadAfterWrite(t *testing.T) {
	written := map[int]bool{TargetBase: true}
	for _, pass := range Plan(crtterm.DefaultOptions()) {
		if !written[pass.Src] {
			t.Errorf("%s reads target %d before it is written", pass, pass.Src)
		}
		if pass.Kind == Recombine && !written[pass.Src2] {
			t.Errorf("%s reads target %d before it is written", pass, pass.Src2)
		}
		if pass.Src == pass.Dst {
			t.Errorf("%s reads and writes the same target", pass)
		}
		written[pass.Dst] = true
	}
}

func TestPhase(t *testing.T) {
	opts := crtterm.DefaultOptions()
	at := func(ms int64) time.Time { return time.UnixMilli(ms) }

	if got := Phase(at(10000), opts); got != 0 {
		t.Errorf("Phase at period boundary = %v, want 0", got)
	}
	// A quarter period is a quarter turn, doubled by the default speed.
	if got, want := Phase(at(11250), opts), math.Pi; math.Abs(got-want) > 1e-12 {
		t.Errorf("Phase at quarter period = %v, want %v", got, want)
	}
}

func TestUniformsLayout(t *testing.T) {
	opts := crtterm.DefaultOptions()
	p := Params{Width: 800, Height: 600, CellWidth: 10, CellHeight: 20, Time: 1.5}
	f := func(b []byte, i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])) }

	b := Uniforms(nil, Pass{Kind: Scanline}, p, opts)
	if len(b) != UniformSize {
		t.Fatalf("len = %d", len(b))
	}
	if f(b, 0) != 800 || f(b, 3) != 20 || f(b, 4) != 1.5 || f(b, 5) != 25000 || f(b, 6) != 800 {
		t.Errorf("scanline uniforms = %v", b)
	}

	b = Uniforms(b, Pass{Kind: Blur, Radius: 7}, p, opts)
	if f(b, 0) != 800 || f(b, 1) != 600 || f(b, 2) != 7 || f(b, 4) != 0 {
		t.Errorf("blur uniforms not reset or wrong: %v", b)
	}

	b = Uniforms(b, Pass{Kind: Threshold}, p, opts)
	if f(b, 0) != 0.5 {
		t.Errorf("threshold cutoff = %v", f(b, 0))
	}
	b = Uniforms(b, Pass{Kind: Recombine}, p, opts)
	if f(b, 0) != 1.5 {
		t.Errorf("glow intensity = %v", f(b, 0))
	}
}

func TestFrequency(t *testing.T) {
	p := Params{Height: 1600, CellHeight: 20}
	if got := p.Frequency(crtterm.DefaultOptions()); got != 0.1 {
		t.Errorf("Frequency() = %v, want 0.1", got)
	}
}
