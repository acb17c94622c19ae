package emblem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrBadOBJ is returned for OBJ input the loader cannot interpret.
var ErrBadOBJ = errors.New("emblem: malformed OBJ")

// LoadOBJFile reads a Wavefront OBJ file. See LoadOBJ.
func LoadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open emblem mesh: %w", err)
	}
	defer f.Close()
	return LoadOBJ(f)
}

// LoadOBJ reads the positions and faces of a single-object OBJ file into an
// unindexed triangle list. Face corners may use the v, v/vt, v//vn and
// v/vt/vn forms; only the position index is used. Negative indices count
// back from the latest vertex. Faces with more than three corners are
// fanned into triangles. All other statements are ignored.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	var verts [][3]float32
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrBadOBJ, line)
			}
			var v [3]float32
			for k := 0; k < 3; k++ {
				f, err := strconv.ParseFloat(fields[1+k], 32)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrBadOBJ, line, err)
				}
				v[k] = float32(f)
			}
			verts = append(verts, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 corners", ErrBadOBJ, line)
			}
			corners := make([][3]float32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := resolveIndex(tok, len(verts))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrBadOBJ, line, err)
				}
				corners = append(corners, verts[idx])
			}
			for i := 1; i+1 < len(corners); i++ {
				for _, c := range [3][3]float32{corners[0], corners[i], corners[i+1]} {
					m.Positions = append(m.Positions, c[0], c[1], c[2])
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read emblem mesh: %w", err)
	}
	if len(m.Positions) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrBadOBJ)
	}
	return m, nil
}

// resolveIndex turns a face corner token into a zero-based vertex index.
func resolveIndex(tok string, n int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", tok, err)
	}
	switch {
	case v > 0 && v <= n:
		return v - 1, nil
	case v < 0 && -v <= n:
		return n + v, nil
	default:
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", v, n)
	}
}
