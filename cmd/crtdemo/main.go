// Command crtdemo renders a few generations of Conway's game of life
// through the CRT pipeline and saves the last frame as PNG.
//
// It opens a Vulkan device when one is available and falls back to the
// CPU compositor otherwise.
package main

import (
	"errors"
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	"github.com/all-yall/crtterm"
	"github.com/all-yall/crtterm/config"
	"github.com/all-yall/crtterm/integration/tcellmodel"
	"github.com/all-yall/crtterm/render"
)

func main() {
	var (
		cols    = flag.Int("cols", 80, "grid columns")
		rows    = flag.Int("rows", 24, "grid rows")
		cellW   = flag.Float64("cell-width", 9, "cell width in device pixels")
		cellH   = flag.Float64("cell-height", 18, "cell height in device pixels")
		steps   = flag.Int("steps", 40, "generations to simulate")
		seed    = flag.Uint64("seed", 1, "random seed for the initial board")
		cfgPath = flag.String("config", "", "TOML config file")
		output  = flag.String("output", "crtdemo.png", "output file")
		thumb   = flag.String("thumb", "", "optional thumbnail output file")
		thumbW  = flag.Int("thumb-width", 320, "thumbnail width in pixels")
		cpu     = flag.Bool("cpu", false, "skip the GPU and render on the CPU")
		workers = flag.Int("workers", 0, "CPU compositor workers (0 = GOMAXPROCS)")
		elapsed = flag.Duration("at", 3*time.Second, "time since start of the captured frame")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		crtterm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	dims := crtterm.ForGrid(*cols, *rows, *cellW, *cellH)
	r, err := newRenderer(cfg, dims, *cpu, *workers)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Destroy()

	if mesh, err := cfg.Emblem(); err != nil {
		log.Fatalf("Failed to load emblem: %v", err)
	} else if mesh != nil {
		r.SetEmblemMesh(mesh)
	}

	board := newLife(*cols, *rows, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))
	var cells tcell.CellBuffer
	cells.Resize(*cols, *rows)
	for range *steps {
		board.step()
	}
	board.draw(&cells)

	var b tcellmodel.Builder
	model := b.Build(&cells)
	cursor := tcellmodel.CursorAt(&cells, board.focusX, board.focusY, true, crtterm.CursorOutline)

	start := time.Now()
	r.SetIntroStart(start)
	img, err := r.Snapshot(model, cursor, start.Add(*elapsed))
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Frame saved to %s (%dx%d, gpu=%v)\n", *output, dims.CanvasWidth, dims.CanvasHeight, r.IsGPU())

	if *thumb != "" {
		if err := savePNG(*thumb, thumbnail(img, *thumbW)); err != nil {
			log.Fatalf("Failed to save thumbnail: %v", err)
		}
		log.Printf("Thumbnail saved to %s\n", *thumb)
	}
}

func newRenderer(cfg *config.Config, dims crtterm.Dimensions, cpuOnly bool, workers int) (*render.Renderer, error) {
	opts := cfg.RendererOptions()
	if !cpuOnly {
		r, err := render.NewStandalone(cfg.Theme, dims, opts...)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, crtterm.ErrNoAdapter) {
			return nil, err
		}
		log.Printf("No GPU available (%v), using the CPU compositor", err)
	}
	return render.NewCPU(cfg.Theme, dims, workers, opts...)
}

func thumbnail(src *image.RGBA, width int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 || width >= b.Dx() {
		return src
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
