package formats

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// psdBuilder assembles a minimal single-purpose PSD document for tests.
type psdBuilder struct {
	width, height uint32
	layers        []psdTestLayer
}

type psdTestLayer struct {
	name string
	// gray fills the R, G and B channels with this value over the whole
	// canvas.
	gray uint8
	rle  bool
}

func (b *psdBuilder) build() []byte {
	buf := new(bytes.Buffer)

	// Header.
	buf.WriteString("8BPS")
	binary.Write(buf, binary.BigEndian, uint16(1)) // version
	buf.Write(make([]byte, 6))                     // reserved
	binary.Write(buf, binary.BigEndian, uint16(3)) // channels
	binary.Write(buf, binary.BigEndian, b.height)
	binary.Write(buf, binary.BigEndian, b.width)
	binary.Write(buf, binary.BigEndian, uint16(8)) // depth
	binary.Write(buf, binary.BigEndian, uint16(3)) // RGB

	binary.Write(buf, binary.BigEndian, uint32(0)) // color mode data
	binary.Write(buf, binary.BigEndian, uint32(0)) // image resources

	info := new(bytes.Buffer)
	binary.Write(info, binary.BigEndian, int16(len(b.layers)))
	images := new(bytes.Buffer)
	for _, l := range b.layers {
		b.writeLayer(info, images, l)
	}

	total := new(bytes.Buffer)
	binary.Write(total, binary.BigEndian, uint32(info.Len()))
	total.Write(info.Bytes())
	total.Write(images.Bytes())

	binary.Write(buf, binary.BigEndian, uint32(total.Len()))
	buf.Write(total.Bytes())
	return buf.Bytes()
}

func (b *psdBuilder) writeLayer(info, images *bytes.Buffer, l psdTestLayer) {
	n := int(b.width * b.height)
	var channel []byte
	if l.rle {
		channel = packBitsChannel(l.gray, int(b.width), int(b.height))
	} else {
		raw := bytes.Repeat([]byte{l.gray}, n)
		channel = append([]byte{0, 0}, raw...) // compression 0
	}

	binary.Write(info, binary.BigEndian, int32(0))        // top
	binary.Write(info, binary.BigEndian, int32(0))        // left
	binary.Write(info, binary.BigEndian, int32(b.height)) // bottom
	binary.Write(info, binary.BigEndian, int32(b.width))  // right
	binary.Write(info, binary.BigEndian, uint16(3))
	for id := int16(0); id < 3; id++ {
		binary.Write(info, binary.BigEndian, id)
		binary.Write(info, binary.BigEndian, uint32(len(channel)))
		images.Write(channel)
	}
	info.WriteString("8BIM")
	info.WriteString("norm")
	info.Write([]byte{255, 0, 0, 0}) // opacity, clipping, flags, filler

	extra := new(bytes.Buffer)
	binary.Write(extra, binary.BigEndian, uint32(0)) // layer mask
	binary.Write(extra, binary.BigEndian, uint32(0)) // blending ranges
	extra.WriteByte(uint8(len(l.name)))
	extra.WriteString(l.name)
	for (extra.Len()-8)%4 != 0 { // pascal name padded to a 4-byte boundary
		extra.WriteByte(0)
	}
	binary.Write(info, binary.BigEndian, uint32(extra.Len()))
	info.Write(extra.Bytes())
}

// packBitsChannel emits an RLE-compressed channel: one repeat run per row.
func packBitsChannel(value uint8, w, h int) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, uint16(1)) // compression 1
	row := []byte{byte(int8(1 - w)), value}
	for i := 0; i < h; i++ {
		binary.Write(buf, binary.BigEndian, uint16(len(row)))
	}
	for i := 0; i < h; i++ {
		buf.Write(row)
	}
	return buf.Bytes()
}

func TestParsePSD_RawLayers(t *testing.T) {
	b := psdBuilder{width: 4, height: 3, layers: []psdTestLayer{
		{name: "Heights", gray: 200},
		{name: "water", gray: 17},
	}}

	psd, err := ParsePSD(b.build())
	if err != nil {
		t.Fatalf("ParsePSD failed: %v", err)
	}
	if psd.Width != 4 || psd.Height != 3 {
		t.Fatalf("expected 4x3, got %dx%d", psd.Width, psd.Height)
	}
	if len(psd.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(psd.Layers))
	}
	if psd.Layers[0].Name != "Heights" {
		t.Errorf("layer 0 name = %q", psd.Layers[0].Name)
	}

	px := psd.Layers[0].RGBA[0]
	if px&255 != 200 || px>>8&255 != 200 || px>>16&255 != 200 {
		t.Errorf("layer 0 pixel = %08x, want gray 200", px)
	}
	if px>>24&255 != 255 {
		t.Errorf("layer without alpha channel should be opaque, got %08x", px)
	}
}

func TestParsePSD_RLELayer(t *testing.T) {
	b := psdBuilder{width: 8, height: 2, layers: []psdTestLayer{
		{name: "roads", gray: 99, rle: true},
	}}

	psd, err := ParsePSD(b.build())
	if err != nil {
		t.Fatalf("ParsePSD failed: %v", err)
	}
	for i, px := range psd.Layers[0].RGBA {
		if px&255 != 99 {
			t.Fatalf("pixel %d = %08x, want R=99", i, px)
		}
	}
}

func TestParsePSD_InvalidMagic(t *testing.T) {
	if _, err := ParsePSD([]byte("XXXX")); err == nil {
		t.Error("expected error for invalid magic")
	}
}

func TestParsePSD_Truncated(t *testing.T) {
	b := psdBuilder{width: 4, height: 4, layers: []psdTestLayer{{name: "soil", gray: 1}}}
	data := b.build()

	if _, err := ParsePSD(data[:len(data)-10]); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestPSDLayerLookup(t *testing.T) {
	psd := &PSD{Layers: []PSDLayer{{Name: "trees"}, {Name: "grass"}}}

	if psd.Layer("grass") == nil {
		t.Error("expected to find layer 'grass'")
	}
	if psd.Layer("lava") != nil {
		t.Error("did not expect to find layer 'lava'")
	}
}
