package gpu

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/internal/emblem"
	"github.com/all-yall/crtterm/internal/postfx"
	"github.com/all-yall/crtterm/internal/rect"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var testDims = crtterm.Dimensions{CanvasWidth: 64, CanvasHeight: 32, CellWidth: 8, CellHeight: 16}

func testFrame(dims crtterm.Dimensions, opts crtterm.Options, bgCount, cursorCount int) *Frame {
	bg := rect.NewBatch(bgCount)
	for i := range bgCount {
		bg.Write(i, 0, 0, 1, 1, [4]float32{0, 0, 0, 1})
	}
	bg.SetCount(bgCount)
	cur := rect.NewBatch(4)
	cur.SetCount(cursorCount)
	return &Frame{
		Backgrounds: bg,
		Cursor:      cur,
		Dims:        dims,
		Params:      postfx.NewParams(dims, opts, time.Unix(0, 0)),
	}
}

func newRecordingSession(t *testing.T, opts crtterm.Options) (*Session, *recordingDevice, hal.TextureView, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	rec := &recordingDevice{Device: device}
	s := NewSession(rec, queue, opts, nil)
	if err := s.Resize(uint32(testDims.CanvasWidth), uint32(testDims.CanvasHeight)); err != nil {
		cleanup()
		t.Fatalf("Resize: %v", err)
	}
	out, err := createColorTarget(rec, 64, 32, gputypes.TextureUsageRenderAttachment, "test_output")
	if err != nil {
		cleanup()
		t.Fatalf("create output: %v", err)
	}
	return s, rec, out.view, func() {
		s.Destroy()
		out.destroy(rec)
		cleanup()
	}
}

func TestSessionPassOrder(t *testing.T) {
	opts := crtterm.DefaultOptions()
	s, rec, out, cleanup := newRecordingSession(t, opts)
	defer cleanup()

	f := testFrame(testDims, opts, 3, 1)
	m := emblem.Identity()
	f.Intro = &m

	if err := s.RenderFrame(f, out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	want := []string{
		"crt_base_pass",
		"scanline(0->2)",
		"threshold(2->1)",
		"blur[1](1->3)",
		"blur[3](3->1)",
		"blur[5](1->3)",
		"blur[5](3->1)",
		"blur[7](1->3)",
		"recombine(2+3->out)",
		"crt_cursor_pass",
	}
	if got := passLabels(rec.passes); !slices.Equal(got, want) {
		t.Fatalf("passes = %v\nwant %v", got, want)
	}

	base := rec.passes[0]
	if base.view != s.Targets().View(postfx.TargetBase) {
		t.Error("base pass does not render into target 0")
	}
	wantBase := []drawCall{{vertices: 6, instances: 3}, {vertices: 36, instances: 1}}
	if !slices.Equal(base.draws, wantBase) {
		t.Errorf("base draws = %v, want %v", base.draws, wantBase)
	}

	for _, p := range rec.passes[1 : len(rec.passes)-1] {
		if !slices.Equal(p.draws, []drawCall{{vertices: 6, instances: 1}}) {
			t.Errorf("%s draws = %v, want one full-screen quad", p.label, p.draws)
		}
		if p.load != gputypes.LoadOpClear {
			t.Errorf("%s load op = %v, want clear", p.label, p.load)
		}
	}
	if rec.passes[8].view != out {
		t.Error("recombine does not write the output view")
	}

	cursor := rec.passes[9]
	if cursor.view != out || cursor.load != gputypes.LoadOpLoad {
		t.Errorf("cursor pass: view ok=%v load=%v, want output with LoadOpLoad", cursor.view == out, cursor.load)
	}
	if !slices.Equal(cursor.draws, []drawCall{{vertices: 6, instances: 1}}) {
		t.Errorf("cursor draws = %v", cursor.draws)
	}
	if s.FramesEncoded() != 1 {
		t.Errorf("FramesEncoded() = %d, want 1", s.FramesEncoded())
	}
}

func TestSessionSkipsIdleCursorAndIntro(t *testing.T) {
	opts := crtterm.DefaultOptions()
	s, rec, out, cleanup := newRecordingSession(t, opts)
	defer cleanup()

	f := testFrame(testDims, opts, 1, 0)
	if err := s.RenderFrame(f, out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if last := rec.passes[len(rec.passes)-1].label; last != "recombine(2+3->out)" {
		t.Errorf("last pass = %q, want recombine", last)
	}
	if got := rec.passes[0].draws; len(got) != 1 {
		t.Errorf("base pass draws = %v, want only the backgrounds", got)
	}
}

func TestSessionPostProcessDisabled(t *testing.T) {
	opts := crtterm.DefaultOptions()
	opts.PostProcess = false
	s, rec, out, cleanup := newRecordingSession(t, opts)
	defer cleanup()

	if err := s.RenderFrame(testFrame(testDims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	want := []string{"crt_base_pass", "copy(0->out)"}
	if got := passLabels(rec.passes); !slices.Equal(got, want) {
		t.Errorf("passes = %v, want %v", got, want)
	}
}

func TestSessionStaleTargets(t *testing.T) {
	opts := crtterm.DefaultOptions()
	s, rec, out, cleanup := newRecordingSession(t, opts)
	defer cleanup()

	dims := testDims
	dims.CanvasWidth = 80
	err := s.RenderFrame(testFrame(dims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm)
	if !errors.Is(err, crtterm.ErrStaleTargets) {
		t.Fatalf("RenderFrame error = %v, want ErrStaleTargets", err)
	}
	if len(rec.passes) != 0 {
		t.Errorf("stale frame recorded %d passes", len(rec.passes))
	}
	if s.FramesEncoded() != 0 {
		t.Error("stale frame counted as encoded")
	}

	if err := s.Resize(80, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := s.RenderFrame(testFrame(dims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatalf("RenderFrame after resize: %v", err)
	}
}

func TestSessionRebuildsBindGroupsOnResize(t *testing.T) {
	opts := crtterm.DefaultOptions()
	s, rec, out, cleanup := newRecordingSession(t, opts)
	defer cleanup()

	nPasses := len(s.Plan())
	if err := s.RenderFrame(testFrame(testDims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatal(err)
	}
	if err := s.RenderFrame(testFrame(testDims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatal(err)
	}
	if rec.bindGroups != nPasses {
		t.Errorf("bind groups after two frames = %d, want %d", rec.bindGroups, nPasses)
	}

	if err := s.Resize(32, 32); err != nil {
		t.Fatal(err)
	}
	dims := testDims
	dims.CanvasWidth = 32
	if err := s.RenderFrame(testFrame(dims, opts, 1, 0), out, gputypes.TextureFormatBGRA8Unorm); err != nil {
		t.Fatal(err)
	}
	if rec.bindGroups != 2*nPasses {
		t.Errorf("bind groups after resize = %d, want %d", rec.bindGroups, 2*nPasses)
	}
}

func TestSessionSnapshot(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	opts := crtterm.DefaultOptions()
	s := NewSession(device, queue, opts, nil)
	defer s.Destroy()

	// 50 px rows are 200 bytes, padded to 256 in the staging buffer.
	dims := crtterm.Dimensions{CanvasWidth: 50, CanvasHeight: 10, CellWidth: 5, CellHeight: 10}
	if err := s.Resize(50, 10); err != nil {
		t.Fatal(err)
	}
	img, err := s.Snapshot(testFrame(dims, opts, 1, 1))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 10 {
		t.Errorf("snapshot bounds = %v, want 50x10", b)
	}
	if s.stagingSize != 256*10 {
		t.Errorf("staging size = %d, want %d", s.stagingSize, 256*10)
	}
}

func TestSessionDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	opts := crtterm.DefaultOptions()
	s := NewSession(device, queue, opts, nil)
	if err := s.Resize(64, 32); err != nil {
		t.Fatal(err)
	}
	s.Destroy()
	s.Destroy()

	if err := s.Resize(64, 32); !errors.Is(err, crtterm.ErrRendererClosed) {
		t.Errorf("Resize after Destroy = %v, want ErrRendererClosed", err)
	}
	if _, err := s.Snapshot(testFrame(testDims, opts, 1, 0)); !errors.Is(err, crtterm.ErrRendererClosed) {
		t.Errorf("Snapshot after Destroy = %v, want ErrRendererClosed", err)
	}
}

func TestSessionWaitsBeforeReleasingInFlightResources(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	q := &fencedQueue{Queue: queue}
	dev := &fencedDevice{Device: device, queue: q}

	opts := crtterm.DefaultOptions()
	s := NewSession(dev, q, opts, nil)
	defer s.Destroy()
	if err := s.Resize(64, 32); err != nil {
		t.Fatal(err)
	}
	out, err := createColorTarget(device, 128, 64, gputypes.TextureUsageRenderAttachment, "test_output")
	if err != nil {
		t.Fatal(err)
	}
	defer out.destroy(device)
	format := gputypes.TextureFormatBGRA8Unorm

	if err := s.RenderFrame(testFrame(testDims, opts, 3, 1), out.view, format); err != nil {
		t.Fatal(err)
	}
	if !q.busy() || len(s.pending) != 1 {
		t.Fatalf("frame not in flight: busy=%v pending=%d", q.busy(), len(s.pending))
	}

	check := func(step string) {
		t.Helper()
		if len(dev.inFlight) != 0 {
			t.Fatalf("%s destroyed %v while a frame was in flight", step, dev.inFlight)
		}
	}

	// A larger batch replaces the background instance buffer.
	if err := s.RenderFrame(testFrame(testDims, opts, 512, 1), out.view, format); err != nil {
		t.Fatal(err)
	}
	check("instance buffer growth")
	if !q.busy() {
		t.Fatal("growth frame not in flight")
	}

	if err := s.Resize(128, 64); err != nil {
		t.Fatal(err)
	}
	check("resize")
	if len(s.pending) != 0 {
		t.Errorf("pending after resize = %d, want 0", len(s.pending))
	}

	big := crtterm.Dimensions{CanvasWidth: 128, CanvasHeight: 64, CellWidth: 8, CellHeight: 16}
	if err := s.RenderFrame(testFrame(big, opts, 4, 1), out.view, format); err != nil {
		t.Fatal(err)
	}
	// Stale bind groups with a frame in flight.
	s.post.targetsGen = 0
	if err := s.RenderFrame(testFrame(big, opts, 4, 1), out.view, format); err != nil {
		t.Fatal(err)
	}
	check("bind group rebuild")

	s.SetEmblemMesh(emblem.Crystal(4))
	check("emblem swap")
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{1, 2, 3, 4, 10, 20, 30, 40}
	dst := make([]byte, len(src))
	convertBGRAToRGBA(dst, src)
	want := []byte{3, 2, 1, 4, 30, 20, 10, 40}
	if !slices.Equal(dst, want) {
		t.Errorf("convertBGRAToRGBA = %v, want %v", dst, want)
	}
}

func TestTargetSetEnsure(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	ts := NewTargetSet(device)
	defer ts.Destroy()

	if ts.Matches(10, 10) {
		t.Error("empty set matches")
	}
	if err := ts.Ensure(10, 10); err != nil {
		t.Fatal(err)
	}
	gen := ts.Generation()
	if err := ts.Ensure(10, 10); err != nil {
		t.Fatal(err)
	}
	if ts.Generation() != gen {
		t.Error("same-size Ensure recreated targets")
	}
	if err := ts.Ensure(20, 10); err != nil {
		t.Fatal(err)
	}
	if ts.Generation() != gen+1 {
		t.Error("resize did not bump generation")
	}
	for i := range postfx.TargetCount {
		if ts.View(i) == nil || ts.Texture(i) == nil {
			t.Errorf("target %d missing", i)
		}
	}
}
