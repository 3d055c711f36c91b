package terrain

import (
	"testing"
	"unsafe"
)

func TestElementRecordSize(t *testing.T) {
	// Renderers and editors pack millions of these; the record must stay
	// a 24-byte, 4-byte-aligned value.
	if got := unsafe.Sizeof(Element{}); got != 24 {
		t.Errorf("Element size = %d bytes, want 24", got)
	}
	if got := unsafe.Alignof(Element{}); got != 4 {
		t.Errorf("Element alignment = %d, want 4", got)
	}
}

func TestElementKindOrdinals(t *testing.T) {
	// External raster encodings depend on these exact values.
	want := map[ElementKind]uint8{
		KindHeight: 0, KindRoad: 1, KindTree: 2, KindGrass: 3,
		KindFlower: 4, KindStone: 5, KindWater: 6, KindObject: 7,
	}
	for kind, ord := range want {
		if uint8(kind) != ord {
			t.Errorf("%s ordinal = %d, want %d", kind, uint8(kind), ord)
		}
	}
}

func TestElementKindString(t *testing.T) {
	if KindWater.String() != "Water" {
		t.Errorf("KindWater.String() = %q", KindWater.String())
	}
	if got := ElementKind(42).String(); got != "Unknown(42)" {
		t.Errorf("unknown kind String() = %q", got)
	}
}
