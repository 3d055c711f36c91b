package terrain

import (
	"errors"
	"math"

	"github.com/Faultbox/terrascape/pkg/grid"
)

// ErrNoHeightMap is returned by generation passes that need the
// heightmap before SetHeightMap has run.
var ErrNoHeightMap = errors.New("heightmap not set")

// commonDist is the base view distance for ground samples; the finest
// grid cells pop in at 1/W of it, coarser power-of-two cells
// proportionally farther.
const commonDist = 750.0

// placementRand is the deterministic stream behind tree, grass, flower,
// stone and road placement. Every generator creates its own instance
// seeded with 0; the tree, grass, flower and stone passes draw a fixed
// number of samples per visited cell, and the road pass draws only on
// contour cells, so element sequences are bit-identical across runs. The stream itself is
// part of the data contract: worlds must reproduce exactly, so the
// generator is a fixed LCG rather than a library RNG whose sequence may
// change underneath us.
type placementRand struct {
	state uint32
}

// next returns the next sample in [0,32767].
func (r *placementRand) next() int {
	r.state = r.state*214013 + 2531011
	return int(r.state>>16) & 0x7fff
}

// surfNoise is a smooth procedural function of a world position, used to
// vary grass lightness, flower colors and road carving without extra
// input rasters. Returns values in [0,1].
func surfNoise(x, z float32) float32 {
	px := float64(x)
	pz := float64(z)
	return float32(math.Sin(px+pz+math.Sin(px*0.4-pz*0.2)+math.Cos(px*0.7)-math.Sin(pz*0.9))*0.5 + 0.5)
}

// bumpNoise is the coarser variant used to raise stone regions.
// Returns values in [0,1].
func bumpNoise(x, z float32) float32 {
	px := float64(x)
	pz := float64(z)
	return float32(math.Sin(px+pz+math.Sin(px)+math.Cos(pz))*0.5 + 0.5)
}

// hitThresh locates a threshold crossing between a cell and one of its
// two neighbors on subsample resolution. center is at or above thresh;
// the result is in [-1,0] when the crossing lies toward left, in [0,1]
// when it lies toward right, and 0 when neither neighbor is below the
// threshold.
func hitThresh(center, left, right, thresh float32) float32 {
	if left < thresh {
		dist0 := left - thresh
		dist1 := center - thresh
		k := -dist0 + dist1
		if k == 0 {
			return 0
		}
		return -dist0/k - 1
	}
	if right < thresh {
		dist0 := center - thresh
		dist1 := right - thresh
		k := -dist0 + dist1
		if k == 0 {
			return 0
		}
		return -dist0 / k
	}
	return 0
}

// neighbors4 reads a cell and its four clamped neighbors from a w×h
// row-major raster.
func neighbors4(m []uint8, w, h, x, z int) (v0, vn, vp, zn, zp uint8) {
	v0 = m[x+z*w]
	vn = m[clampInt(x-1, 0, w-1)+z*w]
	vp = m[clampInt(x+1, 0, w-1)+z*w]
	zn = m[x+clampInt(z-1, 0, h-1)*w]
	zp = m[x+clampInt(z+1, 0, h-1)*w]
	return
}

// SetHeightMap adopts heights and soil as the landscape's authoritative
// maps and appends Height elements sampled at the given strides. Cells
// are kept where the unmasked terrain is curved beyond steepThresh or lies
// on the map border; masked and flat interior cells are skipped. Cutoffs follow a
// quad-tree pattern: cells aligned to coarser power-of-two grids appear
// at greater distance, and every eighth diagonal border cell gets an
// oversized cutoff so the triangulation always has a stable rim.
//
// The landscape takes ownership of both slices.
func (l *Landscape) SetHeightMap(mask []uint8, heights []uint16, w, h, stepX, stepZ int, distFact, steepThresh float32, soil []uint8) error {
	if w <= 0 || h <= 0 || len(heights) != w*h || len(mask) != w*h || len(soil) != w*h {
		return ErrDimensionMismatch
	}
	if stepX <= 0 {
		stepX = 1
	}
	if stepZ <= 0 {
		stepZ = 1
	}
	l.heights = grid.Wrap(heights, float64(l.MinX), float64(l.MinZ), float64(l.MaxX), float64(l.MaxZ), w, h)
	l.soil = grid.Wrap(soil, float64(l.MinX), float64(l.MinZ), float64(l.MaxX), float64(l.MaxZ), w, h)

	for z := 0; z < h; z += stepZ {
		tz := h
		for z%tz != 0 {
			tz >>= 1
		}
		for x := 0; x < w; x += stepX {
			border := x == 0 || x >= w-stepX || z == 0 || z >= h-stepZ
			if mask[x+z*w] != 0 && !border {
				continue
			}
			v0 := float32(heights[x+z*w])
			vn := float32(heights[clampInt(x-1, 0, w-1)+z*w])
			vp := float32(heights[clampInt(x+1, 0, w-1)+z*w])
			zn := float32(heights[x+clampInt(z-1, 0, h-1)*w])
			zp := float32(heights[x+clampInt(z+1, 0, h-1)*w])
			vx := (vn+vp)*0.5 - v0
			vz := (zn+zp)*0.5 - v0
			curv := float32(math.Sqrt(float64(vx*vx + vz*vz)))
			if curv < steepThresh && !border {
				continue
			}

			var e Element
			e.X = (l.MaxX-l.MinX)*float32(x)/float32(w) + l.MinX
			e.Y = (l.MaxY-l.MinY)*v0/65535.0 + l.MinY
			e.Z = (l.MaxZ-l.MinZ)*float32(z)/float32(h) + l.MinZ
			e.Kind = KindHeight
			dx := vp - vn
			dz := zp - zn
			d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
			if d != 0 {
				dx /= d
			}
			e.V0 = uint8(128 + dx*127)
			e.V1 = soil[x+z*w]

			tx := w
			for x%tx != 0 {
				tx >>= 1
			}
			siz := float32(tx) / float32(w)
			if tz < tx {
				siz = float32(tz) / float32(h)
			}
			siz *= commonDist * distFact
			if border && (x+z)&7 == 0 {
				// a bit too big, keeps the rim in every view
				siz = l.MaxX - l.MinX + l.MaxZ - l.MinZ
			}
			e.CutoffSq = siz * siz
			l.Elements = append(l.Elements, e)
		}
	}
	return nil
}

// SetObjects appends an Object element for every marked pixel of an RGBA
// placement raster. The R channel divided by four selects the object type
// (zero means no object); G and B carry rotation and variant, also
// divided by four. Heights come from the current heightmap.
func (l *Landscape) SetObjects(rgba []uint32, w, h int) error {
	if w <= 0 || h <= 0 || len(rgba) != w*h {
		return ErrDimensionMismatch
	}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			p := rgba[x+z*w]
			p0 := int(p&255) / 4
			if p0 == 0 {
				continue
			}
			p1 := int(p>>8&255) / 4
			p2 := int(p>>16&255) / 4

			var e Element
			e.X = (l.MaxX-l.MinX)*float32(x)/float32(w) + l.MinX
			e.Z = (l.MaxZ-l.MinZ)*float32(z)/float32(h) + l.MinZ
			e.Y = l.Height(e.X, e.Z, 0, 0)
			e.Kind = KindObject
			e.V0 = uint8(p0)
			e.V1 = uint8(p1)
			e.V2 = uint8(p2)
			siz := ((l.MaxX - l.MinX) + (l.MaxZ - l.MinZ)) * 0.05
			switch p0 {
			case 4, 5: // oversized landmark types stay visible much farther out
				siz *= 3
			}
			e.CutoffSq = siz * siz
			l.Elements = append(l.Elements, e)
		}
	}
	return nil
}

// SetTrees appends Tree elements for marked cells of a tree layer. The
// placement stream is reseeded to 0 and draws seven samples per cell, so
// the output is deterministic for a given input. Roughly one in randMod
// candidate cells receives a tree.
func (l *Landscape) SetTrees(mask, layer []uint8, w, h, randMod int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h || len(mask) != w*h {
		return ErrDimensionMismatch
	}
	if randMod <= 0 {
		randMod = 1
	}
	rng := placementRand{}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			r1 := rng.next()
			rng.next()
			r3 := rng.next()
			r4 := rng.next()
			r5 := rng.next()
			r6 := rng.next() & 255
			rng.next()
			if mask[x+z*w] != 0 {
				continue
			}
			if layer[x+z*w] == 0 {
				continue
			}
			if r1%randMod != 0 {
				continue
			}

			var e Element
			e.X = (l.MaxX-l.MinX)*float32(x)/float32(w) + l.MinX
			e.Z = (l.MaxZ-l.MinZ)*float32(z)/float32(h) + l.MinZ
			big := 0
			if r6/220 > 0 {
				big = 1
			}
			e.Y = l.Height(e.X, e.Z, 0, 0) - 0.25 - 0.75*float32(big)
			e.Kind = KindTree
			e.V0 = uint8(r3 & 255) // brightness
			e.V1 = uint8(r4 & 255) // height variant
			e.V2 = uint8(r6&1 + big*128)
			siz := float32(200 + float32(r5&255)/255.0*200)
			e.CutoffSq = siz * siz
			l.Elements = append(l.Elements, e)
		}
	}
	return nil
}

// SetGrass appends Grass elements for marked cells of a grass layer,
// skipping slopes steeper than 0.5 in world units. Positions jitter
// inside their cell; lightness follows a smooth procedural function of
// the position. The stream is reseeded to 0 and draws seven samples per
// cell.
func (l *Landscape) SetGrass(mask, layer []uint8, w, h, randMod int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h || len(mask) != w*h {
		return ErrDimensionMismatch
	}
	if randMod <= 0 {
		randMod = 1
	}
	rng := placementRand{}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			r1 := rng.next()
			rng.next()
			r3 := rng.next()
			r4 := rng.next()
			r5 := rng.next()
			r6 := rng.next()
			r7 := rng.next()
			if mask[x+z*w] != 0 {
				continue
			}
			if layer[x+z*w] == 0 {
				continue
			}
			px0 := (l.MaxX-l.MinX)*float32(x)/float32(w) + l.MinX
			pz0 := (l.MaxZ-l.MinZ)*float32(z)/float32(h) + l.MinZ
			k := 3.0 * (l.MaxX - l.MinX) / float32(w)
			dx := l.Height(px0+k, pz0, 0, 0) - l.Height(px0-k, pz0, 0, 0)
			dz := l.Height(px0, pz0+k, 0, 0) - l.Height(px0, pz0-k, 0, 0)
			slope := float32(math.Sqrt(float64(dx*dx + dz*dz)))
			if r1%randMod != 0 || slope >= 0.5 {
				continue
			}

			var e Element
			ox := float32(r6&255) / 255.0
			oz := float32(r7&255) / 255.0
			e.X = (l.MaxX-l.MinX)*(float32(x)+ox)/float32(w) + l.MinX
			e.Z = (l.MaxZ-l.MinZ)*(float32(z)+oz)/float32(h) + l.MinZ
			e.Y = l.Height(e.X, e.Z, 0, 0)
			e.Kind = KindGrass
			f := surfNoise(e.X*0.25, e.Z*0.25)
			e.V0 = uint8(f*8 + 18 + 4) // lightness
			e.V1 = uint8(r3 & 255)     // overall size
			e.V2 = uint8(r4 & 255)     // width
			siz := 200.0 * (float32(r5&255)/255.0*0.75 + 0.25)
			e.CutoffSq = siz * siz
			l.Elements = append(l.Elements, e)
		}
	}
	return nil
}

// SetFlowers appends Flower elements for marked cells of a flower layer.
// Colors mostly follow the smooth procedural field, with an occasional
// random outlier. The stream is reseeded to 0 and draws seven samples
// per cell.
func (l *Landscape) SetFlowers(mask, layer []uint8, w, h, randMod int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h || len(mask) != w*h {
		return ErrDimensionMismatch
	}
	if randMod <= 0 {
		randMod = 1
	}
	rng := placementRand{}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			r1 := rng.next()
			rng.next()
			r3 := rng.next()
			r4 := rng.next()
			r5 := rng.next()
			rng.next()
			r7 := rng.next()
			if mask[x+z*w] != 0 {
				continue
			}
			if layer[x+z*w] == 0 {
				continue
			}
			if r1%randMod != 0 {
				continue
			}

			var e Element
			e.X = (l.MaxX-l.MinX)*float32(x)/float32(w) + l.MinX
			e.Z = (l.MaxZ-l.MinZ)*float32(z)/float32(h) + l.MinZ
			e.Y = l.Height(e.X, e.Z, 0, 0) + 0.5
			e.Kind = KindFlower
			f := surfNoise(e.X*0.5, e.Z*0.5)
			if r3&7 == 0 {
				f = float32(r4&7) / 7.0
			}
			e.V0 = uint8(int(f*4) & 3) // color
			e.V1 = uint8(r5 & 255)     // phase
			e.V2 = uint8(r7 & 255)     // size
			siz := 75.0 * (float32(r5&255)/255.0*0.75 + 0.25) * (float32(e.V2)/255.0*0.5 + 0.5)
			e.CutoffSq = siz * siz
			l.Elements = append(l.Elements, e)
		}
	}
	return nil
}

// SetStones raises the heightmap inside stone regions by a smooth noise
// offset, then traces the outer contour of the stone layer into Stone
// elements with subsample-accurate positions. A second, lower threshold
// traces blank Height pads so the triangulation keeps full interior
// triangles for the stones.
func (l *Landscape) SetStones(layer []uint8, w, h, threshOuter, threshCleanup int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h {
		return ErrDimensionMismatch
	}
	if l.heights == nil {
		return ErrNoHeightMap
	}
	hm := l.heights

	rng := placementRand{}
	for z := 0; z < hm.H; z++ {
		for x := 0; x < hm.W; x++ {
			r2 := rng.next() & 255
			rx := x * w / hm.W
			rz := z * h / hm.H
			if int(layer[rx+rz*w]) < threshOuter {
				continue
			}
			ex := (l.MaxX-l.MinX)*float32(x)/float32(hm.W) + l.MinX
			ez := (l.MaxZ-l.MinZ)*float32(z)/float32(hm.H) + l.MinZ
			f := (bumpNoise(ex*0.1, ez*0.1) + 0.2) * 3 * (1.0 + float32(r2)/255.0*0.25)
			l.PutHeight(ex, ez, l.Height(ex, ez, 0, 0)+f)
		}
	}

	rng = placementRand{}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			r1 := rng.next() & 255
			v0, vn, vp, zn, zp := neighbors4(layer, w, h, x, z)
			gradX := float32(int(vp)-int(vn)) / 255.0
			gradZ := float32(int(zp)-int(zn)) / 255.0
			grad := float32(math.Sqrt(float64(gradX*gradX + gradZ*gradZ)))
			grad = grad * grad * 9
			siz := 250.0 * (grad*2 + 0.01)
			d := siz * siz

			if contourAt(v0, vn, vp, zn, zp, threshOuter) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshOuter))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshOuter))
				var e Element
				e.X = (l.MaxX-l.MinX)*(float32(x)+xd)/float32(w) + l.MinX
				e.Z = (l.MaxZ-l.MinZ)*(float32(z)+zd)/float32(h) + l.MinZ
				e.Y = l.Height(e.X, e.Z, 0, 0)
				e.Kind = KindStone
				e.V0 = uint8(r1)
				e.CutoffSq = d
				l.Elements = append(l.Elements, e)
			}
			if contourAt(v0, vn, vp, zn, zp, threshCleanup) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshCleanup))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshCleanup))
				l.insertPad(float32(x)+xd, float32(z)+zd, w, h, d)
			}
		}
	}
	return nil
}

// SetWater traces the outer contour of a water layer into Water elements
// plus blank Height pads at the cleanup threshold. Cutoffs grow sharply
// with the local layer gradient so calm shores pop in late and detailed
// banks early.
func (l *Landscape) SetWater(layer []uint8, w, h, threshOuter, threshCleanup int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h {
		return ErrDimensionMismatch
	}
	if l.heights == nil {
		return ErrNoHeightMap
	}
	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			v0, vn, vp, zn, zp := neighbors4(layer, w, h, x, z)
			gradX := float32(int(vp)-int(vn)) / 255.0
			gradZ := float32(int(zp)-int(zn)) / 255.0
			grad := float32(math.Sqrt(float64(gradX*gradX + gradZ*gradZ)))
			grad = grad * grad * 9
			grad = grad * grad * 9
			grad = grad * grad * 9
			siz := 400.0 * (grad*3 + 0.01)
			d := siz * siz

			if contourAt(v0, vn, vp, zn, zp, threshOuter) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshOuter))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshOuter))
				var e Element
				e.X = (l.MaxX-l.MinX)*(float32(x)+xd)/float32(w) + l.MinX
				e.Z = (l.MaxZ-l.MinZ)*(float32(z)+zd)/float32(h) + l.MinZ
				e.Y = l.Height(e.X, e.Z, 0, 0)
				e.Kind = KindWater
				e.CutoffSq = d
				l.Elements = append(l.Elements, e)
			}
			if contourAt(v0, vn, vp, zn, zp, threshCleanup) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshCleanup))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshCleanup))
				l.insertPad(float32(x)+xd, float32(z)+zd, w, h, d)
			}
		}
	}
	return nil
}

// SetRoads carves the heightmap down along road regions, then traces two
// road contours (outer rim and inner surface) plus cleanup pads. Road
// rims sprout occasional decorative grass from the placement stream,
// which is reseeded to 0.
func (l *Landscape) SetRoads(layer []uint8, w, h, threshWayOut, threshWayIn, threshCleanup int) error {
	if w <= 0 || h <= 0 || len(layer) != w*h {
		return ErrDimensionMismatch
	}
	if l.heights == nil {
		return ErrNoHeightMap
	}
	hm := l.heights

	rng := placementRand{}
	for z := 0; z < hm.H; z++ {
		for x := 0; x < hm.W; x++ {
			rx := x * w / hm.W
			rz := z * h / hm.H
			if int(layer[rx+rz*w]) < threshWayOut {
				continue
			}
			px := (l.MaxX-l.MinX)*float32(x)/float32(hm.W) + l.MinX
			pz := (l.MaxZ-l.MinZ)*float32(z)/float32(hm.H) + l.MinZ
			f := surfNoise(px, pz)*0.5 + 0.5
			const depth = 0.25
			l.PutHeight(px, pz, l.Height(px, pz, 0, 0)-f*depth)
		}
	}

	for z := 0; z < h; z++ {
		for x := 0; x < w; x++ {
			v0, vn, vp, zn, zp := neighbors4(layer, w, h, x, z)
			gradX := float32(int(vp)-int(vn)) / 255.0
			gradZ := float32(int(zp)-int(zn)) / 255.0
			grad := float32(math.Sqrt(float64(gradX*gradX + gradZ*gradZ)))
			grad = grad * grad * 9
			siz := 500.0 * (grad*3 + 0.01)
			d := siz * siz

			if contourAt(v0, vn, vp, zn, zp, threshWayOut) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshWayOut))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshWayOut))
				var e Element
				e.X = (l.MaxX-l.MinX)*(float32(x)+xd)/float32(w) + l.MinX
				e.Z = (l.MaxZ-l.MinZ)*(float32(z)+zd)/float32(h) + l.MinZ
				e.Y = l.Height(e.X, e.Z, 0, 0)
				e.Kind = KindRoad
				e.V0 = 0
				e.CutoffSq = d
				l.Elements = append(l.Elements, e)

				if rng.next()&7 == 0 {
					l.appendRoadGrass(e.X, e.Z, 200, &rng)
				}
			}
			if contourAt(v0, vn, vp, zn, zp, threshWayIn) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshWayIn))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshWayIn))
				var e Element
				e.X = (l.MaxX-l.MinX)*(float32(x)+xd)/float32(w) + l.MinX
				e.Z = (l.MaxZ-l.MinZ)*(float32(z)+zd)/float32(h) + l.MinZ
				e.Y = l.Height(e.X, e.Z, 0, 0)
				e.Kind = KindRoad
				e.CutoffSq = d
				f := surfNoise(e.X, e.Z)*0.5 + 0.5
				e.V0 = uint8(f * 255.0)
				l.Elements = append(l.Elements, e)

				if rng.next()&15 == 0 {
					l.appendRoadGrass(e.X, e.Z, 100, &rng)
				}
			}
			if contourAt(v0, vn, vp, zn, zp, threshCleanup) {
				xd := hitThresh(float32(v0), float32(vn), float32(vp), float32(threshCleanup))
				zd := hitThresh(float32(v0), float32(zn), float32(zp), float32(threshCleanup))
				l.insertPad(float32(x)+xd, float32(z)+zd, w, h, d)
			}
		}
	}
	return nil
}

// appendRoadGrass drops one decorative grass tuft on a road contour
// position.
func (l *Landscape) appendRoadGrass(x, z float32, size uint8, rng *placementRand) {
	var e Element
	e.X = x
	e.Z = z
	e.Y = l.Height(x, z, 0, 0)
	e.Kind = KindGrass
	e.V0 = uint8(rng.next()%4 + 16) // lightness
	e.V1 = size                     // overall size
	e.V2 = 0                        // width
	siz := 200.0 * (float32(rng.next()&255)/255.0*0.75 + 0.25)
	e.CutoffSq = siz * siz
	l.Elements = append(l.Elements, e)
}

// contourAt reports whether a cell sits on the outer boundary of the
// region at or above thresh: the cell itself qualifies while at least one
// neighbor does not.
func contourAt(v0, vn, vp, zn, zp uint8, thresh int) bool {
	if int(v0) < thresh {
		return false
	}
	return int(vn) < thresh || int(vp) < thresh || int(zn) < thresh || int(zp) < thresh
}
