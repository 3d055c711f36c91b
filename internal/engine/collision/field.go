// Package collision provides a coarse 2D scalar field for line-vs-terrain
// obstacle queries. Obstacles are stamped into the field as discs or
// resampled masks; a position counts as solid where the interpolated
// field reaches 128.
package collision

import (
	"math"

	"github.com/Faultbox/terrascape/pkg/grid"
)

// Hit describes where a raycast stopped: the last non-solid position
// along the ray and the field's gradient normal there.
type Hit struct {
	X, Z   float64
	NX, NZ float64
}

// Field is a W×H byte field with its own world bounds, independent of
// any heightmap. The zero outside the grid reads as 255, so the world
// beyond the field is always solid.
//
// Mutators are not safe for concurrent use; once the field is frozen,
// concurrent Sample/RaycastLine calls are fine.
type Field struct {
	grid *grid.Grid[uint8]

	// SolidStartHits controls rays that begin inside a solid region:
	// when false (the default) they report no hit, when true they hit
	// immediately at the start position.
	SolidStartHits bool
}

// NewField allocates a zeroed collision field over the world rectangle
// [minX,maxX) × [minZ,maxZ).
func NewField(minX, minZ, maxX, maxZ float64, w, h int) *Field {
	return &Field{grid: grid.New[uint8](minX, minZ, maxX, maxZ, w, h)}
}

// Grid exposes the backing grid.
func (f *Field) Grid() *grid.Grid[uint8] {
	return f.grid
}

// StampDisc writes a radial falloff disc centered at world (x,z) into
// the field, keeping the per-cell maximum. The falloff spans twice the
// radius, so the 128 "solid" level sits at distance rad.
func (f *Field) StampDisc(x, z, rad float64) {
	g := f.grid
	rad2 := rad * 2.0
	c0 := g.ColOf(x - rad2)
	r0 := g.RowOf(z - rad2)
	c1 := g.ColOf(x + rad2)
	r1 := g.RowOf(z + rad2)
	for r := r0; r <= r1; r++ {
		if r < 0 || r >= g.H {
			continue
		}
		dz := (g.ZOf(r) - z) / rad2
		for c := c0; c <= c1; c++ {
			if c < 0 || c >= g.W {
				continue
			}
			dx := (g.XOf(c) - x) / rad2
			d := 1.0 - math.Sqrt(dx*dx+dz*dz)
			if d <= 0 {
				continue
			}
			k := int(d * 256.0)
			if k > 255 {
				k = 255
			}
			if k < 0 {
				k = 0
			}
			if uint8(k) > g.At(c, r) {
				g.Set(c, r, uint8(k))
			}
		}
	}
}

// StampMask resamples an external w×h byte mask bilinearly over the whole
// field, scales it, adds an offset (add of 0.5 means 128), and keeps the
// per-cell maximum.
func (f *Field) StampMask(mask []uint8, w, h int, scale, add float64) {
	g := f.grid
	for r := 0; r < g.H; r++ {
		for c := 0; c < g.W; c++ {
			fx := float64(c) * float64(w) / float64(g.W)
			fz := float64(r) * float64(h) / float64(g.H)
			x2 := int(math.Floor(fx))
			z2 := int(math.Floor(fz))
			tx := fx - float64(x2)
			tz := fz - float64(z2)
			x3 := x2 + 1
			if x3 >= w {
				x3 = w - 1
			}
			z3 := z2 + 1
			if z3 >= h {
				z3 = h - 1
			}
			v00 := float64(mask[x2+z2*w])
			v10 := float64(mask[x3+z2*w])
			v11 := float64(mask[x3+z3*w])
			v01 := float64(mask[x2+z3*w])
			top := (v10-v00)*tx + v00
			btm := (v11-v01)*tx + v01
			t := (btm-top)*tz + top
			k := int(t*scale + add*256.0)
			if k > 255 {
				k = 255
			}
			if k < 0 {
				k = 0
			}
			if uint8(k) > g.At(c, r) {
				g.Set(c, r, uint8(k))
			}
		}
	}
}

// BoxBlur smooths the field with a mean filter of kernel size
// (2*boxSize+1)², clipped at the edges. Blurring rounds off stamped
// shapes and gives the raycast smoother gradient normals.
func (f *Field) BoxBlur(boxSize int) {
	g := f.grid
	old := make([]uint8, len(g.Data))
	copy(old, g.Data)
	for r := 0; r < g.H; r++ {
		for c := 0; c < g.W; c++ {
			var sum, n float64
			for kr := r - boxSize; kr <= r+boxSize; kr++ {
				if kr < 0 || kr >= g.H {
					continue
				}
				for kc := c - boxSize; kc <= c+boxSize; kc++ {
					if kc < 0 || kc >= g.W {
						continue
					}
					sum += float64(old[kc+kr*g.W])
					n++
				}
			}
			if n != 0 {
				sum /= n
			}
			g.Set(c, r, uint8(sum))
		}
	}
}

// Sample returns the bilinearly interpolated field value at world (x,z),
// or 255 outside the grid.
func (f *Field) Sample(x, z float64) float64 {
	return f.grid.Bilinear(x, z, 255)
}

// IsSolid reports whether the interpolated field at world (x,z) reaches
// the solid level of 128.
func (f *Field) IsSolid(x, z float64) bool {
	return f.Sample(x, z) >= 128.0
}

// GradientNormal returns the unit normal of the field at world (x,z),
// pointing away from rising field values. The step is half a cell. A flat
// field yields the zero vector.
func (f *Field) GradientNormal(x, z float64) (nx, nz float64) {
	g := f.grid
	dx := g.CellX() * 0.5
	dz := g.CellZ() * 0.5
	ax := f.Sample(x+dx, z) - f.Sample(x-dx, z)
	az := f.Sample(x, z+dz) - f.Sample(x, z-dz)
	d := math.Sqrt(ax*ax + az*az)
	if d != 0 {
		d = 1.0 / d
	}
	return -ax * d, -az * d
}

// RaycastLine walks the segment from (x0,z0) to (x1,z1) in steps of a
// tenth of a half cell and returns the first solid crossing, or nil when
// the segment stays clear. The reported position is the last non-solid
// sample before the crossing. A ray that starts inside a solid region
// returns nil unless SolidStartHits is set.
func (f *Field) RaycastLine(x0, z0, x1, z1 float64) *Hit {
	if f.IsSolid(x0, z0) {
		if f.SolidStartHits {
			nx, nz := f.GradientNormal(x0, z0)
			return &Hit{X: x0, Z: z0, NX: nx, NZ: nz}
		}
		return nil
	}
	xd := x1 - x0
	zd := z1 - z0
	d := math.Sqrt(xd*xd + zd*zd)
	if d < 0.00001 {
		return nil
	}
	xd /= d
	zd /= d
	g := f.grid
	step := g.CellX() * 0.5
	if g.CellZ() < g.CellX() {
		step = g.CellZ() * 0.5
	}
	step *= 0.1
	xp := x0
	zp := z0
	for {
		lx := xp
		lz := zp
		xp += xd * step
		zp += zd * step
		dx := xp - x0
		dz := zp - z0
		if math.Sqrt(dx*dx+dz*dz) > d {
			return nil
		}
		if f.IsSolid(xp, zp) {
			nx, nz := f.GradientNormal(lx, lz)
			return &Hit{X: lx, Z: lz, NX: nx, NZ: nz}
		}
	}
}
