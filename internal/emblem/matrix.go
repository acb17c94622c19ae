package emblem

import "math"

// Mat4 is a 4x4 float32 matrix in column-major order, the layout WGSL
// expects for mat4x4<f32> uniforms. Element (row r, column c) is m[c*4+r].
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scaling returns a matrix scaling x, y and z independently.
func Scaling(sx, sy, sz float32) Mat4 {
	return Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	}
}

// YRotation returns a rotation of angle radians about the y axis.
func YRotation(angle float64) Mat4 {
	c := float32(math.Cos(angle))
	s := float32(math.Sin(angle))
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// Mul returns a*b: applying the result to a point applies b first, then a.
func Mul(a, b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// YRotate returns m with a y-axis rotation applied before it.
func YRotate(m Mat4, angle float64) Mat4 {
	return Mul(m, YRotation(angle))
}

// Apply transforms the point (x, y, z, 1) and returns x, y, z, w.
func (m Mat4) Apply(x, y, z float32) (float32, float32, float32, float32) {
	return m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14],
		m[3]*x + m[7]*y + m[11]*z + m[15]
}
