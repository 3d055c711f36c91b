package terrain

import (
	"sort"

	vmath "github.com/Faultbox/terrascape/pkg/math"
	"github.com/Faultbox/terrascape/pkg/triangulate"
)

// Triangle references three vertices of the current view by index.
type Triangle [3]uint32

// DelaunayView turns the elements near a camera into a ground
// triangulation ordered for painter-style rendering. The view borrows its
// Landscape and reuses all scratch buffers across updates; it is not safe
// for concurrent use, and the Landscape must not be mutated during an
// Update.
type DelaunayView struct {
	scape *Landscape
	tri   triangulate.Triangulator

	elements []*Element
	points   []float64

	// Outputs of the last Update. Triangles index the parallel
	// Vertices/Kinds/Params arrays and are sorted by first vertex index;
	// vertices are appended farthest-first, so the two orderings together
	// approximate back-to-front.
	Triangles []Triangle
	Vertices  []vmath.Vec3
	Kinds     []uint8
	Params    []vmath.Vec3
}

// NewDelaunayView creates a view over the given landscape.
func NewDelaunayView(scape *Landscape) *DelaunayView {
	return &DelaunayView{scape: scape}
}

// Update collects the elements visible from cameraPos at the given detail
// scale, sorts them back-to-front, and retriangulates the ground-relevant
// subset (Height, Road, Stone, Water). Other kinds are collected but left
// to sprite/object renderers.
func (v *DelaunayView) Update(cameraPos vmath.Vec3, detailScale float32) {
	v.scape.Collect(&v.elements, cameraPos.X, cameraPos.Y, cameraPos.Z, detailScale)

	distSq := func(e *Element) float32 {
		dx := e.X - cameraPos.X
		dy := e.Y - cameraPos.Y
		dz := e.Z - cameraPos.Z
		return dx*dx + dy*dy + dz*dz
	}
	// Farthest first; the stable sort keeps master-list order on ties.
	sort.SliceStable(v.elements, func(i, j int) bool {
		return distSq(v.elements[i]) > distSq(v.elements[j])
	})

	v.points = v.points[:0]
	v.Kinds = v.Kinds[:0]
	v.Vertices = v.Vertices[:0]
	v.Params = v.Params[:0]
	for _, e := range v.elements {
		switch e.Kind {
		case KindHeight, KindRoad, KindStone, KindWater:
			v.points = append(v.points, float64(e.X), float64(e.Z))
			v.Kinds = append(v.Kinds, uint8(e.Kind))
			v.Vertices = append(v.Vertices, vmath.Vec3{X: e.X, Y: e.Y, Z: e.Z})
			v.Params = append(v.Params, vmath.Vec3{
				X: float32(e.V0) / 255.0,
				Y: float32(e.V1) / 255.0,
				Z: float32(e.V2) / 255.0,
			})
		}
	}

	indices := v.tri.Triangulate(v.points)
	v.Triangles = v.Triangles[:0]
	for i := 0; i+2 < len(indices); i += 3 {
		v.Triangles = append(v.Triangles, Triangle{indices[i], indices[i+1], indices[i+2]})
	}
	sort.SliceStable(v.Triangles, func(i, j int) bool {
		return v.Triangles[i][0] < v.Triangles[j][0]
	})
}

// Collected returns the elements gathered by the last Update, farthest
// first. The slice is reused by the next Update.
func (v *DelaunayView) Collected() []*Element {
	return v.elements
}
