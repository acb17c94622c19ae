// Package filter is the CPU rendition of the CRT chain. It rasterizes the
// same rectangle batches the GPU draws, walks the same postfx.Plan and
// evaluates each program per pixel, so headless snapshots and tests can
// check what the shaders are meant to produce.
//
// Sampling follows the GPU setup: linear filtering, clamp-to-edge, uv
// measured from pixel centers.
package filter
