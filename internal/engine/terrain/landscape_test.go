package terrain

import (
	"errors"
	"math"
	"testing"
)

// testLandscape builds a 16x16 landscape with a constant mid-level
// heightmap and zeroed mask/soil.
func testLandscape(t *testing.T) *Landscape {
	t.Helper()
	l, err := NewLandscape(-250, -250, 250, 250, 0, 100)
	if err != nil {
		t.Fatalf("NewLandscape failed: %v", err)
	}
	const n = 16
	heights := make([]uint16, n*n)
	for i := range heights {
		heights[i] = 32768
	}
	mask := make([]uint8, n*n)
	soil := make([]uint8, n*n)
	if err := l.SetHeightMap(mask, heights, n, n, 1, 1, 1, 1, soil); err != nil {
		t.Fatalf("SetHeightMap failed: %v", err)
	}
	return l
}

func TestNewLandscapeInvalidBounds(t *testing.T) {
	cases := [][6]float32{
		{10, 0, 10, 20, 0, 1},  // minX == maxX
		{0, 5, 10, 5, 0, 1},    // minZ == maxZ
		{0, 0, -10, 10, 0, 1},  // minX > maxX
		{0, 0, 10, 10, 5, 0},   // minY > maxY
	}
	for _, c := range cases {
		if _, err := NewLandscape(c[0], c[1], c[2], c[3], c[4], c[5]); !errors.Is(err, ErrInvalidBounds) {
			t.Errorf("NewLandscape(%v) err = %v, want ErrInvalidBounds", c, err)
		}
	}
}

func TestSetHeightMapDimensionMismatch(t *testing.T) {
	l, _ := NewLandscape(0, 0, 10, 10, 0, 1)
	err := l.SetHeightMap(make([]uint8, 4), make([]uint16, 9), 3, 3, 1, 1, 1, 1, make([]uint8, 9))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestHeightCenterInterpolation(t *testing.T) {
	l, _ := NewLandscape(0, 0, 1, 1, 0, 100)
	heights := []uint16{0, 65535, 65535, 0}
	err := l.SetHeightMap(make([]uint8, 4), heights, 2, 2, 1, 1, 1, 0, make([]uint8, 4))
	if err != nil {
		t.Fatal(err)
	}

	got := l.Height(0.5, 0.5, 0, 0)
	if math.Abs(float64(got)-50.0) > 0.01 {
		t.Errorf("Height(0.5,0.5) = %v, want 50.0", got)
	}
}

func TestHeightOutsideBoundsClamps(t *testing.T) {
	l, _ := NewLandscape(0, 0, 1, 1, 0, 100)
	heights := []uint16{0, 0, 0, 65535}
	err := l.SetHeightMap(make([]uint8, 4), heights, 2, 2, 1, 1, 1, 0, make([]uint8, 4))
	if err != nil {
		t.Fatal(err)
	}

	inside := l.Height(0.999, 0.999, 0, 0)
	outside := l.Height(5, 5, 0, 0)
	if inside != outside {
		t.Errorf("outside sample %v != clamped border sample %v", outside, inside)
	}
}

func TestHeightContinuity(t *testing.T) {
	l := testLandscape(t)
	// Walk a line in small steps; a bilinear surface over a constant map
	// must stay constant, and any map must have no jumps.
	prev := l.Height(-200, 0, 0, 0)
	for x := float32(-200); x < 200; x += 0.5 {
		h := l.Height(x, 0, 0, 0)
		if math.Abs(float64(h-prev)) > 0.001 {
			t.Fatalf("height jumped from %v to %v at x=%v", prev, h, x)
		}
		prev = h
	}
}

func TestHeightBoxFlatMap(t *testing.T) {
	l := testLandscape(t)
	point := l.Height(10, 10, 0, 0)
	box := l.HeightBox(10, 10, 3)
	if math.Abs(float64(point-box)) > 0.01 {
		t.Errorf("box filter over flat map = %v, point sample = %v", box, point)
	}
}

func TestPutHeightRoundTrip(t *testing.T) {
	l := testLandscape(t)
	l.PutHeight(0, 0, 80)

	got := l.Height(0, 0, 0, 0)
	// Neighboring cells still hold the old level, so the bilinear sample
	// lands between; it must have clearly moved toward the new height.
	if got <= 51 {
		t.Errorf("Height after PutHeight = %v, want raised above the 50 base", got)
	}
}

func TestCollectExactSubset(t *testing.T) {
	l, _ := NewLandscape(-250, -250, 250, 250, 0, 100)
	l.Elements = []Element{
		{Kind: KindTree, X: 10, CutoffSq: 101},  // d²=100 < 101: in
		{Kind: KindTree, X: 10, CutoffSq: 100},  // d²=100 == cutoff: out
		{Kind: KindTree, Z: 3, CutoffSq: 1000},  // d²=9: in
		{Kind: KindTree, Y: 90, CutoffSq: 4000}, // d²=8100: out
	}

	var out []*Element
	l.Collect(&out, 0, 0, 0, 1.0)
	if len(out) != 2 {
		t.Fatalf("collected %d elements, want 2", len(out))
	}
	if out[0] != &l.Elements[0] || out[1] != &l.Elements[2] {
		t.Error("collected wrong subset")
	}

	// Doubling the detail scale admits the borderline element.
	l.Collect(&out, 0, 0, 0, 2.0)
	if len(out) != 3 {
		t.Errorf("collected %d elements at scale 2, want 3", len(out))
	}
}

func TestRemoveKindIdempotent(t *testing.T) {
	l := testLandscape(t)
	l.Elements = append(l.Elements, Element{Kind: KindObject}, Element{Kind: KindObject})
	withObjects := len(l.Elements)

	l.RemoveKind(KindObject)
	after := len(l.Elements)
	if after != withObjects-2 {
		t.Fatalf("RemoveKind removed %d elements, want 2", withObjects-after)
	}
	l.RemoveKind(KindObject)
	if len(l.Elements) != after {
		t.Error("second RemoveKind changed the element list")
	}
	for i := range l.Elements {
		if l.Elements[i].Kind == KindObject {
			t.Fatal("object element survived RemoveKind")
		}
	}
}

func TestElementsWithinBounds(t *testing.T) {
	l := testLandscape(t)
	layer := make([]uint8, 16*16)
	for i := range layer {
		layer[i] = 255
	}
	mask := make([]uint8, 16*16)
	if err := l.SetTrees(mask, layer, 16, 16, 3); err != nil {
		t.Fatal(err)
	}
	if err := l.SetGrass(mask, layer, 16, 16, 3); err != nil {
		t.Fatal(err)
	}
	if err := l.SetFlowers(mask, layer, 16, 16, 3); err != nil {
		t.Fatal(err)
	}

	for i := range l.Elements {
		e := &l.Elements[i]
		if e.X < l.MinX || e.X > l.MaxX || e.Z < l.MinZ || e.Z > l.MaxZ {
			t.Fatalf("element %d (%s) at (%v,%v) outside bounds", i, e.Kind, e.X, e.Z)
		}
		if e.CutoffSq < 0 {
			t.Fatalf("element %d has negative cutoff", i)
		}
	}
}
