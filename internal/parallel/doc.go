// Package parallel runs per-row image work on a fixed set of goroutines.
//
// The CPU compositor splits every full-screen pass into horizontal bands
// and hands them to a Pool; each band writes a disjoint range of rows so
// no locking is needed inside a pass.
package parallel
