package rect

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/all-yall/crtterm"
)

func testDims(cols, rows int) crtterm.Dimensions {
	return crtterm.ForGrid(cols, rows, 9, 18)
}

func TestBuildDefaultGridOnlyViewport(t *testing.T) {
	cache := NewColorCache(crtterm.DefaultTheme())
	m := crtterm.NewRenderModel(24, 80)

	batch, err := NewBatcher().Build(m, cache, testDims(80, 24))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if batch.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (viewport only)", batch.Count())
	}
	got := batch.Instance(0)
	want := [8]float32{0, 0, 1, 1}
	bg := cache.Background()
	copy(want[4:], bg[:])
	if got != want {
		t.Errorf("viewport = %v, want %v", got, want)
	}
}

func TestBuildSinglePaletteRun(t *testing.T) {
	theme := crtterm.DefaultTheme()
	cache := NewColorCache(theme)
	m := crtterm.NewRenderModel(24, 80)
	m.Fill(5, 10, 20, crtterm.Palette16(1))
	dims := testDims(80, 24)

	batch, err := NewBatcher().Build(m, cache, dims)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", batch.Count())
	}
	got := batch.Instance(1)
	g := newGrid(dims)
	want := [8]float32{g.x(10), g.y(5), g.x(10), g.y(1)}
	p1 := theme.ANSI[1].Floats()
	copy(want[4:], p1[:])
	if got != want {
		t.Errorf("run rect = %v, want %v", got, want)
	}
}

func TestBuildIdempotent(t *testing.T) {
	cache := NewColorCache(crtterm.DefaultTheme())
	m := randomModel(rand.New(rand.NewPCG(1, 2)), 12, 40)
	b := NewBatcher()
	dims := testDims(40, 12)

	first, err := b.Build(m, cache, dims)
	if err != nil {
		t.Fatal(err)
	}
	snapshot := append([]float32(nil), first.Instances()...)

	second, err := b.Build(m, cache, dims)
	if err != nil {
		t.Fatal(err)
	}
	got := second.Instances()
	if len(got) != len(snapshot) {
		t.Fatalf("second build has %d floats, first had %d", len(got), len(snapshot))
	}
	for i := range got {
		if math.Float32bits(got[i]) != math.Float32bits(snapshot[i]) {
			t.Fatalf("float %d differs: %v vs %v", i, got[i], snapshot[i])
		}
	}
}

func TestBuildThemeChangeUpdatesViewport(t *testing.T) {
	themeA := crtterm.DefaultTheme()
	cache := NewColorCache(themeA)
	b := NewBatcher()
	m := crtterm.NewRenderModel(4, 4)
	dims := testDims(4, 4)

	if _, err := b.Build(m, cache, dims); err != nil {
		t.Fatal(err)
	}

	themeB := themeA.Clone()
	themeB.Background = crtterm.OpaqueRGB(0x102030)
	cache.Update(themeB)

	batch, err := b.Build(m, cache, dims)
	if err != nil {
		t.Fatal(err)
	}
	vp := batch.Instance(0)
	want := themeB.Background.Floats()
	if [4]float32(vp[4:]) != want {
		t.Errorf("viewport color = %v, want %v", vp[4:], want)
	}
	if batch.Count() != 1 {
		t.Errorf("Count() = %d, want 1", batch.Count())
	}
}

func TestBuildInverseUsesForeground(t *testing.T) {
	theme := crtterm.DefaultTheme()
	cache := NewColorCache(theme)
	m := crtterm.NewRenderModel(1, 6)
	// Inverse cells with default foreground paint the theme foreground.
	for col := 0; col < 3; col++ {
		m.SetCell(0, col, 'a', crtterm.DefaultColor.WithInverse(), crtterm.Palette16(4))
	}
	// Foreground change under inverse splits the run.
	m.SetCell(0, 3, 'b', crtterm.Palette16(2).WithInverse(), crtterm.Palette16(4))

	batch, err := NewBatcher().Build(m, cache, testDims(6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", batch.Count())
	}
	first, second := batch.Instance(1), batch.Instance(2)
	if got := [4]float32(first[4:]); got != theme.Foreground.Floats() {
		t.Errorf("inverse run color = %v, want theme foreground", got)
	}
	if got := [4]float32(second[4:]); got != theme.ANSI[2].Floats() {
		t.Errorf("second run color = %v, want palette 2", got)
	}
}

func TestBuildForegroundChangeWithoutInverseKeepsRun(t *testing.T) {
	cache := NewColorCache(crtterm.DefaultTheme())
	m := crtterm.NewRenderModel(1, 8)
	for col := 0; col < 8; col++ {
		m.SetCell(0, col, 'x', crtterm.Palette256(uint8(col)), crtterm.RGBColor(200, 0, 0))
	}
	batch, err := NewBatcher().Build(m, cache, testDims(8, 1))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count() != 2 {
		t.Errorf("Count() = %d, want 2", batch.Count())
	}
}

func TestBuildMergesEquivalentEncodings(t *testing.T) {
	theme := crtterm.DefaultTheme()
	cache := NewColorCache(theme)
	m := crtterm.NewRenderModel(1, 10)
	m.Fill(0, 0, 5, crtterm.Palette16(1))
	m.Fill(0, 5, 10, crtterm.Palette256(1))

	batch, err := NewBatcher().Build(m, cache, testDims(10, 1))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (one merged run)", batch.Count())
	}
	if inst := batch.Instance(1); inst[2] != 1 {
		t.Errorf("merged width = %v, want full row", inst[2])
	}
}

func TestBuildSkipsRunsMatchingBackground(t *testing.T) {
	theme := crtterm.DefaultTheme()
	cache := NewColorCache(theme)
	m := crtterm.NewRenderModel(2, 4)
	m.Fill(0, 0, 4, crtterm.RGBColor(0x08, 0x0A, 0x4A))
	batch, err := NewBatcher().Build(m, cache, testDims(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	if batch.Count() != 1 {
		t.Errorf("Count() = %d, want 1", batch.Count())
	}
}

func TestBuildShortModel(t *testing.T) {
	cache := NewColorCache(nil)
	m := crtterm.NewRenderModel(2, 2)
	m.Cells = m.Cells[:5]
	if _, err := NewBatcher().Build(m, cache, testDims(2, 2)); !errors.Is(err, crtterm.ErrModelTooShort) {
		t.Errorf("Build() error = %v, want ErrModelTooShort", err)
	}
}

func TestBuildCapacityGrowsInGridSteps(t *testing.T) {
	cache := NewColorCache(nil)
	b := NewBatcher()
	m := crtterm.NewRenderModel(3, 4)
	if _, err := b.Build(m, cache, testDims(4, 3)); err != nil {
		t.Fatal(err)
	}
	if got := b.batch.Capacity(); got != 13 {
		t.Errorf("Capacity() = %d, want 13", got)
	}
	small := crtterm.NewRenderModel(1, 1)
	if _, err := b.Build(small, cache, testDims(1, 1)); err != nil {
		t.Fatal(err)
	}
	if got := b.batch.Capacity(); got != 13 {
		t.Errorf("Capacity() shrank to %d", got)
	}
}

// TestBuildRunsPartitionRows checks, over random grids, that every row is
// covered exactly by its emitted runs plus background cells, and that the
// number of runs per row is the number of maximal non-background color runs.
func TestBuildRunsPartitionRows(t *testing.T) {
	theme := crtterm.DefaultTheme()
	theme.ANSI = []crtterm.RGBA{
		theme.Background,
		crtterm.OpaqueRGB(0xFF0000),
		crtterm.OpaqueRGB(0x00FF00),
		crtterm.OpaqueRGB(0xFF0000),
	}
	cache := NewColorCache(theme)
	b := NewBatcher()
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		rows, cols := 1+rng.IntN(6), 1+rng.IntN(30)
		m := randomModel(rng, rows, cols)
		dims := testDims(cols, rows)
		batch, err := b.Build(m, cache, dims)
		if err != nil {
			t.Fatal(err)
		}
		checkPartition(t, m, cache, dims, batch)
	}
}

func checkPartition(t *testing.T, m *crtterm.RenderModel, cache *ColorCache, dims crtterm.Dimensions, batch *Batch) {
	t.Helper()
	sx := dims.CellWidth / float64(dims.CanvasWidth)
	sy := dims.CellHeight / float64(dims.CanvasHeight)
	bg := cache.Background()

	covered := make([][]int, m.Rows)
	for r := range covered {
		covered[r] = make([]int, m.Cols)
	}
	perRow := make([]int, m.Rows)
	for i := 1; i < batch.Count(); i++ {
		inst := batch.Instance(i)
		row := int(math.Round(float64(inst[1]) / sy))
		start := int(math.Round(float64(inst[0]) / sx))
		n := int(math.Round(float64(inst[2]) / sx))
		color := [4]float32(inst[4:])
		if n <= 0 {
			t.Fatalf("instance %d has empty span", i)
		}
		if color == bg {
			t.Fatalf("instance %d has the background color", i)
		}
		perRow[row]++
		for col := start; col < start+n; col++ {
			covered[row][col]++
			want := cache.Effective(m.Background(row, col), m.Foreground(row, col))
			if want != color {
				t.Fatalf("row %d col %d: drawn %v, effective %v", row, col, color, want)
			}
		}
	}
	for row := 0; row < m.Rows; row++ {
		runs := 0
		var prev [4]float32
		for col := 0; col < m.Cols; col++ {
			c := cache.Effective(m.Background(row, col), m.Foreground(row, col))
			switch covered[row][col] {
			case 0:
				if c != bg {
					t.Fatalf("row %d col %d not covered but effective %v", row, col, c)
				}
			case 1:
			default:
				t.Fatalf("row %d col %d covered %d times", row, col, covered[row][col])
			}
			if c != bg && (col == 0 || c != prev) {
				runs++
			}
			prev = c
		}
		if perRow[row] != runs {
			t.Fatalf("row %d: %d rects, want %d maximal runs", row, perRow[row], runs)
		}
	}
}

func randomModel(rng *rand.Rand, rows, cols int) *crtterm.RenderModel {
	m := crtterm.NewRenderModel(rows, cols)
	pick := func() crtterm.Color {
		switch rng.IntN(6) {
		case 0, 1:
			return crtterm.DefaultColor
		case 2:
			return crtterm.Palette16(uint8(rng.IntN(6)))
		case 3:
			return crtterm.Palette256(uint8(rng.IntN(6)))
		case 4:
			return crtterm.RGBColor(0xFF, 0, 0)
		default:
			return crtterm.RGBColor(0x08, 0x0A, 0x4A)
		}
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			fg := pick()
			if rng.IntN(4) == 0 {
				fg = fg.WithInverse()
			}
			m.SetCell(row, col, ' ', fg, pick())
		}
	}
	return m
}
