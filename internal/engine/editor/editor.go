// Package editor provides the in-place object authoring surface: it
// mutates an RGBA object placement raster, persists it as PNG, and
// regenerates the landscape's object elements.
package editor

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/Faultbox/terrascape/internal/engine/layers"
	"github.com/Faultbox/terrascape/internal/engine/terrain"
	vmath "github.com/Faultbox/terrascape/pkg/math"
)

// editBox is the half extent of the cell box affected by rotate and
// remove operations (a 5×5 box).
const editBox = 2

// ObjectEditor edits the object placement raster of a landscape. The
// editor borrows the landscape and view; it owns only the raster. Every
// successful mutation is persisted and followed by an object regeneration
// plus a view refresh at the editor's camera state.
type ObjectEditor struct {
	scape *terrain.Landscape
	view  *terrain.DelaunayView

	// CameraPos and DetailScale parameterize the view refresh after each
	// edit; the owner keeps them current.
	CameraPos   vmath.Vec3
	DetailScale float32

	objects  *layers.BitmapLayer
	fileName string
}

// NewObjectEditor creates an editor over the given landscape and view.
func NewObjectEditor(scape *terrain.Landscape, view *terrain.DelaunayView) *ObjectEditor {
	return &ObjectEditor{scape: scape, view: view, DetailScale: 1}
}

// Objects exposes the placement raster. Nil until SetObjectsFile has run.
func (e *ObjectEditor) Objects() *layers.BitmapLayer {
	return e.objects
}

// SetObjectsFile loads the placement raster from a PNG file; a missing
// file yields a fresh zeroed w×h raster that will be created on the
// first save.
func (e *ObjectEditor) SetObjectsFile(path string, w, h int) error {
	e.fileName = path
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		e.objects = layers.NewBitmapLayer(w, h)
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(img.Bounds())
		for y := nrgba.Rect.Min.Y; y < nrgba.Rect.Max.Y; y++ {
			for x := nrgba.Rect.Min.X; x < nrgba.Rect.Max.X; x++ {
				nrgba.Set(x, y, img.At(x, y))
			}
		}
	}
	e.objects = layers.FromNRGBA(nrgba)
	return nil
}

// Place marks the cell covering pos with an object id and refreshes.
func (e *ObjectEditor) Place(pos vmath.Vec3, objectID int) error {
	px, pz, ok := e.cell(pos)
	if !ok {
		return nil
	}
	r := uint32(objectID&63)*4 + 2
	e.objects.Data[px+pz*e.objects.W] = r
	if err := e.save(); err != nil {
		return err
	}
	e.Refresh()
	return nil
}

// RotateY sets the rotation parameter of every object in a 5×5 cell box
// around pos. rot selects one of eight directions (0..7). Nothing is
// saved or refreshed when the box holds no objects.
func (e *ObjectEditor) RotateY(pos vmath.Vec3, rot int) error {
	px, pz, _ := e.cell(pos)
	some := false
	for z := pz - editBox; z <= pz+editBox; z++ {
		if z < 0 || z >= e.objects.H {
			continue
		}
		for x := px - editBox; x <= px+editBox; x++ {
			if x < 0 || x >= e.objects.W {
				continue
			}
			rgba := e.objects.Data[x+z*e.objects.W]
			if rgba&255 == 0 {
				continue
			}
			some = true
			g := uint32(rot)*4 + 2
			e.objects.Data[x+z*e.objects.W] = rgba&^uint32(255<<8) | g<<8
		}
	}
	if !some {
		return nil
	}
	if err := e.save(); err != nil {
		return err
	}
	e.Refresh()
	return nil
}

// Remove clears a 5×5 cell box around pos and refreshes.
func (e *ObjectEditor) Remove(pos vmath.Vec3) error {
	px, pz, _ := e.cell(pos)
	for z := pz - editBox; z <= pz+editBox; z++ {
		if z < 0 || z >= e.objects.H {
			continue
		}
		for x := px - editBox; x <= px+editBox; x++ {
			if x < 0 || x >= e.objects.W {
				continue
			}
			e.objects.Data[x+z*e.objects.W] = 0
		}
	}
	if err := e.save(); err != nil {
		return err
	}
	e.Refresh()
	return nil
}

// Refresh regenerates the landscape's Object elements from the raster
// and updates the view.
func (e *ObjectEditor) Refresh() {
	e.scape.RemoveKind(terrain.KindObject)
	_ = e.scape.SetObjects(e.objects.Data, e.objects.W, e.objects.H)
	e.view.Update(e.CameraPos, e.DetailScale)
}

// cell maps a world position onto the raster, reporting whether it lies
// inside.
func (e *ObjectEditor) cell(pos vmath.Vec3) (int, int, bool) {
	px := int((pos.X - e.scape.MinX) / (e.scape.MaxX - e.scape.MinX) * float32(e.objects.W))
	pz := int((pos.Z - e.scape.MinZ) / (e.scape.MaxZ - e.scape.MinZ) * float32(e.objects.H))
	ok := px >= 0 && px < e.objects.W && pz >= 0 && pz < e.objects.H
	return px, pz, ok
}

// save writes the raster to the objects file. The in-memory raster is
// unaffected by a failed save.
func (e *ObjectEditor) save() error {
	f, err := os.Create(e.fileName)
	if err != nil {
		return fmt.Errorf("saving %s: %w", e.fileName, err)
	}
	if err := png.Encode(f, e.objects.NRGBA()); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", e.fileName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", e.fileName, err)
	}
	return nil
}
