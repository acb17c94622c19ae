package emblem

import "math"

// Mesh is an unindexed triangle list: every 9 floats are one triangle's
// three x, y, z positions.
type Mesh struct {
	Positions []float32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Positions) < 3 {
		return lo, hi
	}
	copy(lo[:], m.Positions[:3])
	copy(hi[:], m.Positions[:3])
	for i := 3; i+2 < len(m.Positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := m.Positions[i+k]
			if v < lo[k] {
				lo[k] = v
			}
			if v > hi[k] {
				hi[k] = v
			}
		}
	}
	return lo, hi
}

// Normalize centers the mesh on the origin and scales it so its largest
// extent spans [-1, 1].
func (m *Mesh) Normalize() {
	lo, hi := m.Bounds()
	var center [3]float32
	extent := float32(0)
	for k := 0; k < 3; k++ {
		center[k] = (lo[k] + hi[k]) / 2
		if e := (hi[k] - lo[k]) / 2; e > extent {
			extent = e
		}
	}
	if extent == 0 {
		return
	}
	for i := 0; i+2 < len(m.Positions); i += 3 {
		for k := 0; k < 3; k++ {
			m.Positions[i+k] = (m.Positions[i+k] - center[k]) / extent
		}
	}
}

// Crystal returns the built-in emblem: a flattened bipyramid with the given
// number of sides around its waist.
func Crystal(sides int) *Mesh {
	if sides < 3 {
		sides = 3
	}
	const depth = 0.35
	top := [3]float32{0, 1, 0}
	bottom := [3]float32{0, -1, 0}
	ring := make([][3]float32, sides)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(sides)
		ring[i] = [3]float32{float32(math.Cos(a)) * 0.8, 0, float32(math.Sin(a)) * depth}
	}

	m := &Mesh{Positions: make([]float32, 0, sides*2*9)}
	tri := func(a, b, c [3]float32) {
		m.Positions = append(m.Positions, a[0], a[1], a[2], b[0], b[1], b[2], c[0], c[1], c[2])
	}
	for i := range ring {
		next := ring[(i+1)%sides]
		tri(top, ring[i], next)
		tri(bottom, next, ring[i])
	}
	return m
}
