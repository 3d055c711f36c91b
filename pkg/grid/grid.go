// Package grid provides fixed-size 2D scalar arrays with a world-space
// affine mapping. The column axis is world X, the row axis is world Z.
package grid

import "math"

// Scalar is the set of cell types a Grid can hold.
type Scalar interface {
	~uint8 | ~uint16
}

// Grid is a W×H scalar field covering the world rectangle
// [MinX,MaxX) × [MinZ,MaxZ). Cells are stored row-major, row index = Z.
type Grid[T Scalar] struct {
	Data []T
	W, H int

	MinX, MaxX float64
	MinZ, MaxZ float64
}

// New allocates a zeroed W×H grid with the given world bounds.
func New[T Scalar](minX, minZ, maxX, maxZ float64, w, h int) *Grid[T] {
	return &Grid[T]{
		Data: make([]T, w*h),
		W:    w,
		H:    h,
		MinX: minX,
		MaxX: maxX,
		MinZ: minZ,
		MaxZ: maxZ,
	}
}

// Wrap adopts an existing row-major buffer. The grid takes ownership of
// the slice for its lifetime.
func Wrap[T Scalar](data []T, minX, minZ, maxX, maxZ float64, w, h int) *Grid[T] {
	return &Grid[T]{
		Data: data,
		W:    w,
		H:    h,
		MinX: minX,
		MaxX: maxX,
		MinZ: minZ,
		MaxZ: maxZ,
	}
}

// ColOf returns the column index covering world X. Not clamped.
func (g *Grid[T]) ColOf(x float64) int {
	return int(math.Floor((x - g.MinX) * float64(g.W) / (g.MaxX - g.MinX)))
}

// RowOf returns the row index covering world Z. Not clamped.
func (g *Grid[T]) RowOf(z float64) int {
	return int(math.Floor((z - g.MinZ) * float64(g.H) / (g.MaxZ - g.MinZ)))
}

// XOf returns the world X coordinate of column c.
func (g *Grid[T]) XOf(c int) float64 {
	return float64(c)*(g.MaxX-g.MinX)/float64(g.W) + g.MinX
}

// ZOf returns the world Z coordinate of row r.
func (g *Grid[T]) ZOf(r int) float64 {
	return float64(r)*(g.MaxZ-g.MinZ)/float64(g.H) + g.MinZ
}

// CellX returns the world width of one cell.
func (g *Grid[T]) CellX() float64 {
	return (g.MaxX - g.MinX) / float64(g.W)
}

// CellZ returns the world depth of one cell.
func (g *Grid[T]) CellZ() float64 {
	return (g.MaxZ - g.MinZ) / float64(g.H)
}

// At returns the cell at (c,r). No bounds check.
func (g *Grid[T]) At(c, r int) T {
	return g.Data[c+r*g.W]
}

// Set writes the cell at (c,r). No bounds check.
func (g *Grid[T]) Set(c, r int, v T) {
	g.Data[c+r*g.W] = v
}

// AtClamped returns the cell at (c,r) with both indices clamped to the
// grid, replicating edge values.
func (g *Grid[T]) AtClamped(c, r int) T {
	if c < 0 {
		c = 0
	}
	if c >= g.W {
		c = g.W - 1
	}
	if r < 0 {
		r = 0
	}
	if r >= g.H {
		r = g.H - 1
	}
	return g.Data[c+r*g.W]
}

// Bilinear samples the field at world (x,z). When the integer corner
// falls on or past the last column/row the saturation value is returned,
// matching the convention that the world outside the field reads as solid.
func (g *Grid[T]) Bilinear(x, z float64, saturation float64) float64 {
	fx := (x - g.MinX) * float64(g.W) / (g.MaxX - g.MinX)
	fz := (z - g.MinZ) * float64(g.H) / (g.MaxZ - g.MinZ)
	c := int(math.Floor(fx))
	r := int(math.Floor(fz))
	if c < 0 || c >= g.W-1 {
		return saturation
	}
	if r < 0 || r >= g.H-1 {
		return saturation
	}
	tx := fx - float64(c)
	tz := fz - float64(r)
	v00 := float64(g.Data[c+r*g.W])
	v10 := float64(g.Data[c+1+r*g.W])
	v11 := float64(g.Data[c+1+(r+1)*g.W])
	v01 := float64(g.Data[c+(r+1)*g.W])
	top := (v10-v00)*tx + v00
	btm := (v11-v01)*tx + v01
	return (btm-top)*tz + top
}
