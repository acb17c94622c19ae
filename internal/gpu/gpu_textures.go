package gpu

import (
	"fmt"

	"github.com/all-yall/crtterm/internal/postfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TargetFormat is the color format of every offscreen render target.
const TargetFormat = gputypes.TextureFormatBGRA8Unorm

// colorTarget is one texture plus its default view.
type colorTarget struct {
	tex  hal.Texture
	view hal.TextureView
}

func createColorTarget(device hal.Device, w, h uint32, usage gputypes.TextureUsage, label string) (colorTarget, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         usage,
	})
	if err != nil {
		return colorTarget{}, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return colorTarget{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return colorTarget{tex: tex, view: view}, nil
}

func (c *colorTarget) destroy(device hal.Device) {
	if c.view != nil {
		device.DestroyTextureView(c.view)
		c.view = nil
	}
	if c.tex != nil {
		device.DestroyTexture(c.tex)
		c.tex = nil
	}
}

// TargetSet holds the four offscreen targets of the effect chain:
//
//	0 base      backgrounds, glyphs and emblem
//	1 bright    threshold output, blur ping
//	2 scanned   scanline output, recombine base
//	3 pingpong  blur pong
//
// All four share one size. Ensure recreates them together and bumps
// Generation so dependent bind groups know to rebuild.
type TargetSet struct {
	device     hal.Device
	targets    [postfx.TargetCount]colorTarget
	width      uint32
	height     uint32
	generation uint64
}

// NewTargetSet returns an empty target set.
func NewTargetSet(device hal.Device) *TargetSet {
	return &TargetSet{device: device}
}

var targetLabels = [postfx.TargetCount]string{"crt_base", "crt_bright", "crt_scanned", "crt_pingpong"}

// Ensure creates or recreates the targets if w x h differs from the
// current size. Matching dimensions are a no-op.
func (ts *TargetSet) Ensure(w, h uint32) error {
	if ts.width == w && ts.height == h && ts.targets[0].tex != nil {
		return nil
	}
	ts.destroyTargets()

	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc
	for i := range ts.targets {
		t, err := createColorTarget(ts.device, w, h, usage, targetLabels[i])
		if err != nil {
			ts.destroyTargets()
			return err
		}
		ts.targets[i] = t
	}
	ts.width = w
	ts.height = h
	ts.generation++
	slogger().Debug("gpu: render targets recreated", "width", w, "height", h, "generation", ts.generation)
	return nil
}

// View returns the view of target i.
func (ts *TargetSet) View(i int) hal.TextureView { return ts.targets[i].view }

// Texture returns the texture of target i.
func (ts *TargetSet) Texture(i int) hal.Texture { return ts.targets[i].tex }

// Size returns the current target size in pixels.
func (ts *TargetSet) Size() (w, h uint32) { return ts.width, ts.height }

// Generation increases every time the targets are recreated.
func (ts *TargetSet) Generation() uint64 { return ts.generation }

// Matches reports whether the targets exist and have size w x h.
func (ts *TargetSet) Matches(w, h uint32) bool {
	return ts.targets[0].tex != nil && ts.width == w && ts.height == h
}

// transition records a usage barrier for each listed target. Required on
// Vulkan and DX12 between rendering into a target and sampling it; a no-op
// elsewhere.
func (ts *TargetSet) transition(enc hal.CommandEncoder, indices []int, from, to gputypes.TextureUsage) {
	if len(indices) == 0 {
		return
	}
	barriers := make([]hal.TextureBarrier, len(indices))
	for i, idx := range indices {
		barriers[i] = hal.TextureBarrier{
			Texture: ts.targets[idx].tex,
			Usage:   hal.TextureUsageTransition{OldUsage: from, NewUsage: to},
		}
	}
	enc.TransitionTextures(barriers)
}

func (ts *TargetSet) destroyTargets() {
	for i := len(ts.targets) - 1; i >= 0; i-- {
		ts.targets[i].destroy(ts.device)
	}
	ts.width, ts.height = 0, 0
}

// Destroy releases all targets. Safe to call more than once.
func (ts *TargetSet) Destroy() {
	if ts.device == nil {
		return
	}
	ts.destroyTargets()
}
