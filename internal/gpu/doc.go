// Package gpu owns every HAL object crtterm creates: the instanced
// rectangle pipeline, the intro emblem pipeline, the four offscreen render
// targets and the CRT post-processing chain.
//
// A frame is recorded into one command encoder:
//
//	base pass    target 0   backgrounds, glyph hook, intro emblem
//	postfx       0 -> 2 -> 1 <-> 3 -> output
//	cursor pass  output     LoadOpLoad, plain rectangle pipeline
//
// and submitted once. The package never reads the render model itself;
// callers hand it finished rect.Batch values.
package gpu
