// Package rect turns a terminal render model into rectangle instances.
//
// Everything here is CPU-side and allocation-free in steady state: a
// [Batch] grows in whole-grid steps and is rebuilt from scratch every frame.
// The GPU upload of a batch lives in internal/gpu.
package rect
