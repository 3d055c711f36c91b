// Package layers manages named RGBA rasters used as element-generation
// inputs: heightmaps, soil ids, placement masks and feature layers, keyed
// by lowercased layer name.
package layers

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"github.com/Faultbox/terrascape/pkg/formats"
)

// BitmapLayer is one raw RGBA raster. Pixels are packed little-endian
// (R | G<<8 | B<<16 | A<<24), row-major.
type BitmapLayer struct {
	Data []uint32
	W, H int
}

// NewBitmapLayer allocates a transparent w×h layer.
func NewBitmapLayer(w, h int) *BitmapLayer {
	return &BitmapLayer{Data: make([]uint32, w*h), W: w, H: h}
}

// Channel extracts one channel plane (0=R, 1=G, 2=B, 3=A).
func (l *BitmapLayer) Channel(c int) []uint8 {
	shift := uint(c * 8)
	out := make([]uint8, len(l.Data))
	for i, px := range l.Data {
		out[i] = uint8(px >> shift)
	}
	return out
}

// Gray16 expands the R channel to 16 bit, suitable as a heightmap.
func (l *BitmapLayer) Gray16() []uint16 {
	out := make([]uint16, len(l.Data))
	for i, px := range l.Data {
		out[i] = uint16(px&255) * 257
	}
	return out
}

// NRGBA copies the layer into an image for encoding or rescaling.
func (l *BitmapLayer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.W, l.H))
	for i, px := range l.Data {
		img.Pix[i*4+0] = uint8(px)
		img.Pix[i*4+1] = uint8(px >> 8)
		img.Pix[i*4+2] = uint8(px >> 16)
		img.Pix[i*4+3] = uint8(px >> 24)
	}
	return img
}

// FromNRGBA copies an image into a fresh layer.
func FromNRGBA(img *image.NRGBA) *BitmapLayer {
	b := img.Bounds()
	l := NewBitmapLayer(b.Dx(), b.Dy())
	for y := 0; y < l.H; y++ {
		for x := 0; x < l.W; x++ {
			o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			l.Data[x+y*l.W] = uint32(img.Pix[o]) |
				uint32(img.Pix[o+1])<<8 |
				uint32(img.Pix[o+2])<<16 |
				uint32(img.Pix[o+3])<<24
		}
	}
	return l
}

// Scaled resamples the layer to w×h. Inputs whose resolution differs
// from the heightmap are brought in line before generation.
func (l *BitmapLayer) Scaled(w, h int) *BitmapLayer {
	if w == l.W && h == l.H {
		return l
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), l.NRGBA(), image.Rect(0, 0, l.W, l.H), draw.Src, nil)
	return FromNRGBA(dst)
}

// Compose fades src onto the layer using src's alpha channel, scaled by
// alphaScale in [0,1].
func (l *BitmapLayer) Compose(src *BitmapLayer, alphaScale float32) error {
	if src.W != l.W || src.H != l.H {
		return fmt.Errorf("compose: layer is %dx%d, source is %dx%d", l.W, l.H, src.W, src.H)
	}
	for i := range l.Data {
		l.Data[i] = alphaPixel(l.Data[i], src.Data[i], alphaScale)
	}
	return nil
}

// ClearWhere zeroes every pixel where src's alpha reaches thresh.
func (l *BitmapLayer) ClearWhere(src *BitmapLayer, thresh int) error {
	if src.W != l.W || src.H != l.H {
		return fmt.Errorf("clear: layer is %dx%d, source is %dx%d", l.W, l.H, src.W, src.H)
	}
	for i := range l.Data {
		if int(src.Data[i]>>24&255) >= thresh {
			l.Data[i] = 0
		}
	}
	return nil
}

// alphaPixel blends one source pixel onto a destination pixel by the
// source alpha, per channel.
func alphaPixel(d, s uint32, alphaScale float32) uint32 {
	a := float32(s>>24&255) / 255.0 * alphaScale
	var out uint32
	for c := uint(0); c < 32; c += 8 {
		dv := float32(d >> c & 255)
		sv := float32(s >> c & 255)
		out |= (uint32(dv+(sv-dv)*a) & 255) << c
	}
	return out
}

// DownsampleChannel shrinks a single-channel raster by div using area
// averaging, so thin features contribute proportionally instead of being
// dropped. Returns the new plane and its dimensions.
func DownsampleChannel(data []uint8, w, h int, div float32) ([]uint8, int, int) {
	nw := int(float32(w) / div)
	nh := int(float32(h) / div)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	out := make([]uint8, nw*nh)
	for y := 0; y < nh; y++ {
		y0 := int(math.Floor(float64(y) * float64(h) / float64(nh)))
		y1 := int(math.Ceil(float64(y+1) * float64(h) / float64(nh)))
		if y1 > h {
			y1 = h
		}
		for x := 0; x < nw; x++ {
			x0 := int(math.Floor(float64(x) * float64(w) / float64(nw)))
			x1 := int(math.Ceil(float64(x+1) * float64(w) / float64(nw)))
			if x1 > w {
				x1 = w
			}
			var sum, n float64
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					sum += float64(data[sx+sy*w])
					n++
				}
			}
			if n != 0 {
				sum /= n
			}
			out[x+y*nw] = uint8(sum)
		}
	}
	return out, nw, nh
}

// BitmapLayers is a named collection of rasters. Names are canonicalized
// to lower case.
type BitmapLayers struct {
	layers map[string]*BitmapLayer
}

// NewBitmapLayers creates an empty collection.
func NewBitmapLayers() *BitmapLayers {
	return &BitmapLayers{layers: make(map[string]*BitmapLayer)}
}

// Add stores a layer under the lowercased name, replacing any previous
// layer with that name.
func (b *BitmapLayers) Add(name string, layer *BitmapLayer) {
	b.layers[strings.ToLower(name)] = layer
}

// Get returns the layer stored under the lowercased name, or nil.
func (b *BitmapLayers) Get(name string) *BitmapLayer {
	return b.layers[strings.ToLower(name)]
}

// Names returns all layer names, sorted.
func (b *BitmapLayers) Names() []string {
	names := make([]string, 0, len(b.layers))
	for name := range b.layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPSD adds every layer of a PSD document to the collection.
func (b *BitmapLayers) LoadPSD(path string) error {
	psd, err := formats.ParsePSDFile(path)
	if err != nil {
		return err
	}
	for i := range psd.Layers {
		b.Add(psd.Layers[i].Name, &BitmapLayer{
			Data: psd.Layers[i].RGBA,
			W:    int(psd.Width),
			H:    int(psd.Height),
		})
	}
	return nil
}
