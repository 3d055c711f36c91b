// Package triangulate computes 2D Delaunay triangulations over flat
// coordinate arrays.
package triangulate

import "github.com/fogleman/delaunay"

// Triangulator triangulates flat [x0,z0,x1,z1,...] point buffers. The
// zero value is ready to use; the point scratch buffer is reused across
// calls.
type Triangulator struct {
	points []delaunay.Point
}

// Triangulate computes the Delaunay triangulation of the given flat
// coordinate array and returns a flat triangle index array of length 3k.
// Indices reference the input points. Degenerate input (fewer than three
// points, all points colinear or coincident) yields an empty result.
func (t *Triangulator) Triangulate(flat []float64) []uint32 {
	n := len(flat) / 2
	if n < 3 {
		return nil
	}
	t.points = t.points[:0]
	for i := 0; i < n; i++ {
		t.points = append(t.points, delaunay.Point{X: flat[i*2], Y: flat[i*2+1]})
	}
	tri, err := delaunay.Triangulate(t.points)
	if err != nil {
		// Colinear or otherwise degenerate input has no triangulation.
		return nil
	}
	out := make([]uint32, len(tri.Triangles))
	for i, idx := range tri.Triangles {
		out[i] = uint32(idx)
	}
	return out
}
