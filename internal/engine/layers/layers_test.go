package layers

import "testing"

func TestNamesAreLowercased(t *testing.T) {
	b := NewBitmapLayers()
	b.Add("Heights", NewBitmapLayer(2, 2))
	b.Add("WATER", NewBitmapLayer(2, 2))

	if b.Get("heights") == nil {
		t.Error("expected to find 'heights'")
	}
	if b.Get("Water") == nil {
		t.Error("expected lookup to be case-insensitive")
	}
	names := b.Names()
	if len(names) != 2 || names[0] != "heights" || names[1] != "water" {
		t.Errorf("Names() = %v", names)
	}
}

func TestChannelAndGray16(t *testing.T) {
	l := NewBitmapLayer(2, 1)
	l.Data[0] = 0x04030201 // A=4 B=3 G=2 R=1
	l.Data[1] = 0xff0000ff

	if r := l.Channel(0); r[0] != 1 || r[1] != 255 {
		t.Errorf("R channel = %v", r)
	}
	if g := l.Channel(1); g[0] != 2 || g[1] != 0 {
		t.Errorf("G channel = %v", g)
	}
	if a := l.Channel(3); a[0] != 4 || a[1] != 255 {
		t.Errorf("A channel = %v", a)
	}

	g16 := l.Gray16()
	if g16[0] != 257 || g16[1] != 65535 {
		t.Errorf("Gray16 = %v, want [257 65535]", g16)
	}
}

func TestComposeFadesByAlpha(t *testing.T) {
	dst := NewBitmapLayer(1, 1)
	dst.Data[0] = 0x000000c8 // R=200, opaque-less base
	src := NewBitmapLayer(1, 1)
	src.Data[0] = 0x80000000 // A=128, everything else 0

	if err := dst.Compose(src, 1.0); err != nil {
		t.Fatal(err)
	}
	r := dst.Data[0] & 255
	// 200 faded halfway toward 0.
	if r < 99 || r > 101 {
		t.Errorf("R after compose = %d, want ~100", r)
	}
}

func TestClearWhere(t *testing.T) {
	dst := NewBitmapLayer(2, 1)
	dst.Data[0] = 0xffffffff
	dst.Data[1] = 0xffffffff
	src := NewBitmapLayer(2, 1)
	src.Data[0] = 0xff000000 // alpha 255
	src.Data[1] = 0x10000000 // alpha 16

	if err := dst.ClearWhere(src, 128); err != nil {
		t.Fatal(err)
	}
	if dst.Data[0] != 0 {
		t.Error("pixel under opaque source should be cleared")
	}
	if dst.Data[1] != 0xffffffff {
		t.Error("pixel under transparent source should remain")
	}
}

func TestComposeDimensionMismatch(t *testing.T) {
	if err := NewBitmapLayer(2, 2).Compose(NewBitmapLayer(3, 3), 1); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestDownsampleChannelAreaAverage(t *testing.T) {
	// 4x4 plane, left half 0, right half 200.
	data := make([]uint8, 16)
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			data[x+y*4] = 200
		}
	}

	out, nw, nh := DownsampleChannel(data, 4, 4, 2)
	if nw != 2 || nh != 2 {
		t.Fatalf("expected 2x2, got %dx%d", nw, nh)
	}
	if out[0] != 0 || out[1] != 200 {
		t.Errorf("row 0 = %v, want [0 200]", out[:2])
	}
}

func TestScaledKeepsContent(t *testing.T) {
	l := NewBitmapLayer(4, 4)
	for i := range l.Data {
		l.Data[i] = 0xff0000ff // opaque red
	}

	s := l.Scaled(2, 2)
	if s.W != 2 || s.H != 2 {
		t.Fatalf("expected 2x2, got %dx%d", s.W, s.H)
	}
	if s.Data[0]&255 != 255 {
		t.Errorf("scaled pixel = %08x, want full red", s.Data[0])
	}
	if same := l.Scaled(4, 4); same != l {
		t.Error("scaling to the same size should return the layer itself")
	}
}
