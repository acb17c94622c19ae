// Copyright 2026 The crtterm Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the public face of crtterm: it turns a RenderModel and
// a cursor into a CRT-styled frame.
//
// # Devices
//
// The renderer normally RECEIVES a GPU device from the host application
// (New with HAL handles, or NewFromProvider with a DeviceHandle). Headless
// tools can open their own Vulkan device with NewStandalone, or skip the
// GPU entirely with NewCPU, which evaluates the same pass plan over float
// images.
//
// # Frame
//
// Every frame runs, in order:
//
//  1. the base pass into an offscreen target: background rectangles, the
//     GlyphRecorder hook, the intro emblem while it is active
//  2. the post-processing chain (scanline, threshold, blur, recombine) or
//     a plain copy when post-processing is off
//  3. the cursor pass directly on the output, over the processed image
//
// All of it is recorded into one command encoder and submitted once.
//
// # Example
//
//	r, err := render.NewFromProvider(app, crtterm.DefaultTheme(), dims)
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	// per frame:
//	err = r.RenderFrame(model, cursor, surfaceView, time.Now())
//	if errors.Is(err, crtterm.ErrStaleTargets) {
//	    // a resize raced the frame; draw again on the next tick
//	}
package render
