package terrain

import (
	"errors"
	"math"

	"github.com/Faultbox/terrascape/pkg/grid"
)

// Landscape errors.
var (
	ErrInvalidBounds     = errors.New("invalid landscape bounds")
	ErrDimensionMismatch = errors.New("raster dimension mismatch")
)

// Landscape owns the master element list, the high-resolution heightmap
// and the soil map for one world. Element generation appends to the list,
// never replacing it; later generation passes may also mutate the
// heightmap (stones raise it, roads carve it), after which the heightmap
// stays authoritative for height lookups.
//
// A Landscape is not safe for concurrent use.
type Landscape struct {
	MinX, MaxX float32
	MinY, MaxY float32
	MinZ, MaxZ float32

	heights *grid.Grid[uint16]
	soil    *grid.Grid[uint8]

	Elements []Element
}

// NewLandscape creates an empty landscape covering the world rectangle
// [minX,maxX) × [minZ,maxZ) with heights mapped into [minY,maxY].
func NewLandscape(minX, minZ, maxX, maxZ, minY, maxY float32) (*Landscape, error) {
	if minX >= maxX || minZ >= maxZ || minY > maxY {
		return nil, ErrInvalidBounds
	}
	return &Landscape{
		MinX: minX, MaxX: maxX,
		MinY: minY, MaxY: maxY,
		MinZ: minZ, MaxZ: maxZ,
	}, nil
}

// Heights exposes the heightmap grid. Nil until SetHeightMap has run.
func (l *Landscape) Heights() *grid.Grid[uint16] {
	return l.heights
}

// Soil exposes the soil map grid. Nil until SetHeightMap has run.
func (l *Landscape) Soil() *grid.Grid[uint8] {
	return l.soil
}

// Collect fills out with pointers to every element whose squared camera
// distance is below its cutoff scaled by detailScale. The output keeps
// master list order; out is cleared first but never reallocated when it
// shrinks.
func (l *Landscape) Collect(out *[]*Element, cx, cy, cz, detailScale float32) {
	*out = (*out)[:0]
	for i := range l.Elements {
		e := &l.Elements[i]
		dx := e.X - cx
		dy := e.Y - cy
		dz := e.Z - cz
		if dx*dx+dy*dy+dz*dz < e.CutoffSq*detailScale {
			*out = append(*out, e)
		}
	}
}

// RemoveKind deletes every element of the given kind from the master
// list, keeping the relative order of the rest.
func (l *Landscape) RemoveKind(kind ElementKind) {
	kept := l.Elements[:0]
	for i := range l.Elements {
		if l.Elements[i].Kind != kind {
			kept = append(kept, l.Elements[i])
		}
	}
	l.Elements = kept
}

// Height returns the bilinearly interpolated heightmap value at world
// (x,z), mapped into [MinY,MaxY]. Coordinates are clamped to the map, so
// borders replicate their height values. dCol/dRow shift the sampled
// cells, which makes box filters over the heightmap possible.
func (l *Landscape) Height(x, z float32, dCol, dRow int) float32 {
	if l.heights == nil {
		return l.MinY
	}
	w := l.heights.W
	h := l.heights.H
	if x < l.MinX {
		x = l.MinX
	}
	if z < l.MinZ {
		z = l.MinZ
	}
	if x > l.MaxX-0.001 {
		x = l.MaxX - 0.001
	}
	if z > l.MaxZ-0.001 {
		z = l.MaxZ - 0.001
	}
	// Cell-center sampling: the half-texel shift keeps the interpolation
	// symmetric, so the midpoint of a map blends all four surrounding
	// cells.
	xf := float64(x-l.MinX)*float64(w)/float64(l.MaxX-l.MinX) - 0.5
	zf := float64(z-l.MinZ)*float64(h)/float64(l.MaxZ-l.MinZ) - 0.5
	if xf < 0 {
		xf = 0
	}
	if xf > float64(w-1) {
		xf = float64(w - 1)
	}
	if zf < 0 {
		zf = 0
	}
	if zf > float64(h-1) {
		zf = float64(h - 1)
	}
	xi := int(math.Floor(xf))
	zi := int(math.Floor(zf))
	xi0 := clampInt(xi+dCol, 0, w-1)
	zi0 := clampInt(zi+dRow, 0, h-1)
	xi1 := xi0 + 1
	if xi1 >= w {
		xi1 = xi0
	}
	zi1 := zi0 + 1
	if zi1 >= h {
		zi1 = zi0
	}
	fx := xf - float64(xi)
	fz := zf - float64(zi)
	p00 := float64(l.heights.At(xi0, zi0))
	p10 := float64(l.heights.At(xi1, zi0))
	p11 := float64(l.heights.At(xi1, zi1))
	p01 := float64(l.heights.At(xi0, zi1))
	top := (p10-p00)*fx + p00
	btm := (p11-p01)*fx + p01
	v := (btm-top)*fz + top
	return float32(v*float64(l.MaxY-l.MinY)/65535.0) + l.MinY
}

// HeightBox returns a box-filtered height at world (x,z) using a kernel
// of (2*rad+1)² heightmap samples.
func (l *Landscape) HeightBox(x, z float32, rad int) float32 {
	var sum, n float32
	for zi := -rad; zi <= rad; zi++ {
		for xi := -rad; xi <= rad; xi++ {
			sum += l.Height(x, z, xi, zi)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// PutHeight writes a world-space height back into the heightmap cell
// covering (x,z). Positions outside the map or on its far borders are
// ignored; the height is clamped into [MinY,MaxY].
func (l *Landscape) PutHeight(x, z, y float32) {
	if l.heights == nil {
		return
	}
	if x < l.MinX || x >= l.MaxX || z < l.MinZ || z >= l.MaxZ {
		return
	}
	w := l.heights.W
	h := l.heights.H
	xi := int(math.Floor(float64(x-l.MinX) * float64(w) / float64(l.MaxX-l.MinX)))
	zi := int(math.Floor(float64(z-l.MinZ) * float64(h) / float64(l.MaxZ-l.MinZ)))
	if xi < 0 || xi >= w-1 || zi < 0 || zi >= h-1 {
		return
	}
	k := float64(y-l.MinY) / float64(l.MaxY-l.MinY) * 65535.0
	if k < 0 {
		k = 0
	}
	if k > 65535.0 {
		k = 65535.0
	}
	l.heights.Set(xi, zi, uint16(k))
}

// insertPad appends a blank Height element at fractional cell position
// (fx,fz) of a w×h raster. Pads force the Delaunay triangulation to keep
// full interior triangles around contour features; cutoffSq is taken as
// the already squared view distance.
func (l *Landscape) insertPad(fx, fz float32, w, h int, cutoffSq float32) {
	var e Element
	e.X = (l.MaxX-l.MinX)*fx/float32(w) + l.MinX
	e.Z = (l.MaxZ-l.MinZ)*fz/float32(h) + l.MinZ
	e.Y = l.Height(e.X, e.Z, 0, 0)
	e.Kind = KindHeight
	e.CutoffSq = cutoffSq

	hm := l.heights
	x := clampInt(int(math.Floor(float64(fx))), 0, hm.W-1)
	z := clampInt(int(math.Floor(float64(fz))), 0, hm.H-1)
	vn := float32(hm.AtClamped(x-1, z))
	vp := float32(hm.AtClamped(x+1, z))
	zn := float32(hm.AtClamped(x, z-1))
	zp := float32(hm.AtClamped(x, z+1))
	dx := vp - vn
	dz := zp - zn
	d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if d != 0 {
		dx /= d
	}
	e.V0 = uint8(128 + dx*127)
	e.V1 = l.soil.AtClamped(x, z)
	l.Elements = append(l.Elements, e)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
