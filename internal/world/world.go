// Package world assembles a full terrain world from a named layer
// bundle: it owns the Landscape, the Delaunay view, the object editor
// and the collision field, and runs the element generation pipeline.
package world

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrascape/internal/config"
	"github.com/Faultbox/terrascape/internal/engine/collision"
	"github.com/Faultbox/terrascape/internal/engine/editor"
	"github.com/Faultbox/terrascape/internal/engine/layers"
	"github.com/Faultbox/terrascape/internal/engine/terrain"
	"github.com/Faultbox/terrascape/internal/logger"
	vmath "github.com/Faultbox/terrascape/pkg/math"
)

// ErrMissingLayer is returned when the bundle lacks a required layer.
var ErrMissingLayer = errors.New("missing required layer")

// Layer names expected in the bundle. Only "heights" is required; a
// missing mask or soil layer reads as all zero, and absent feature layers
// simply generate nothing.
const (
	LayerHeights = "heights"
	LayerSoil    = "soil"
	LayerMask    = "mask"
	LayerTrees   = "trees"
	LayerGrass   = "grass"
	LayerFlowers = "flowers"
	LayerStones  = "stones"
	LayerWater   = "water"
	LayerRoads   = "roads"
)

// Session owns one world: landscape, view, editor and collision field.
// The editor borrows the landscape and view; the session keeps the
// editor's camera state in sync with its own.
type Session struct {
	Scape     *terrain.Landscape
	View      *terrain.DelaunayView
	Editor    *editor.ObjectEditor
	Collision *collision.Field

	Camera      vmath.Vec3
	DetailScale float32

	cfg *config.Config
	log *zap.Logger
}

// NewSession creates an empty session from the configuration. The object
// editor is bound to its placement file immediately; a missing file
// starts a fresh raster.
func NewSession(cfg *config.Config) (*Session, error) {
	w := cfg.World
	scape, err := terrain.NewLandscape(w.MinX, w.MinZ, w.MaxX, w.MaxZ, w.MinY, w.MaxY)
	if err != nil {
		return nil, err
	}
	view := terrain.NewDelaunayView(scape)
	field := collision.NewField(
		float64(w.MinX), float64(w.MinZ), float64(w.MaxX), float64(w.MaxZ),
		cfg.Collision.Width, cfg.Collision.Height,
	)
	field.SolidStartHits = cfg.Collision.SolidStartHits

	ed := editor.NewObjectEditor(scape, view)
	ed.DetailScale = cfg.Generation.DetailScale
	if err := ed.SetObjectsFile(cfg.Editor.ObjectsFile, cfg.Editor.ObjectsWidth, cfg.Editor.ObjectsHeight); err != nil {
		return nil, err
	}

	return &Session{
		Scape:       scape,
		View:        view,
		Editor:      ed,
		Collision:   field,
		DetailScale: cfg.Generation.DetailScale,
		cfg:         cfg,
		log:         logger.Named("world"),
	}, nil
}

// BuildFromLayers runs the full generation pipeline over a layer bundle
// in the canonical order: ground, stones, water, roads, trees, grass,
// flowers, placed objects, then the collision field.
func (s *Session) BuildFromLayers(b *layers.BitmapLayers) error {
	start := time.Now()
	gen := s.cfg.Generation

	heightsLayer := b.Get(LayerHeights)
	if heightsLayer == nil {
		return fmt.Errorf("%w: %s", ErrMissingLayer, LayerHeights)
	}
	w, h := heightsLayer.W, heightsLayer.H

	mask := s.channelOrZero(b, LayerMask, w, h)
	soil := s.channelOrZero(b, LayerSoil, w, h)
	if err := s.Scape.SetHeightMap(mask, heightsLayer.Gray16(), w, h,
		gen.StepX, gen.StepZ, gen.DistFactor, gen.SteepThresh, soil); err != nil {
		return fmt.Errorf("ground: %w", err)
	}
	s.log.Info("ground generated", zap.Int("elements", len(s.Scape.Elements)))

	if stones := s.channel(b, LayerStones, w, h); stones != nil {
		if err := s.Scape.SetStones(stones, w, h, gen.ThreshOuter, gen.ThreshCleanup); err != nil {
			return fmt.Errorf("stones: %w", err)
		}
	}
	if water := s.channel(b, LayerWater, w, h); water != nil {
		if err := s.Scape.SetWater(water, w, h, gen.ThreshOuter, gen.ThreshCleanup); err != nil {
			return fmt.Errorf("water: %w", err)
		}
	}
	if roads := s.channel(b, LayerRoads, w, h); roads != nil {
		if err := s.Scape.SetRoads(roads, w, h, gen.ThreshOuter, gen.ThreshInner, gen.ThreshCleanup); err != nil {
			return fmt.Errorf("roads: %w", err)
		}
	}
	if trees := s.channel(b, LayerTrees, w, h); trees != nil {
		if err := s.Scape.SetTrees(mask, trees, w, h, gen.TreeModulo); err != nil {
			return fmt.Errorf("trees: %w", err)
		}
	}
	if grass := s.channel(b, LayerGrass, w, h); grass != nil {
		if err := s.Scape.SetGrass(mask, grass, w, h, gen.GrassModulo); err != nil {
			return fmt.Errorf("grass: %w", err)
		}
	}
	if flowers := s.channel(b, LayerFlowers, w, h); flowers != nil {
		if err := s.Scape.SetFlowers(mask, flowers, w, h, gen.FlowerModulo); err != nil {
			return fmt.Errorf("flowers: %w", err)
		}
	}

	s.Editor.Refresh()
	s.buildCollision(b, w, h)

	s.log.Info("world built",
		zap.Int("elements", len(s.Scape.Elements)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// buildCollision rebuilds the collision field from scratch: stone and
// water layers are stamped as masks, every placed object becomes a disc,
// and the whole field is blurred for smoother raycast normals.
func (s *Session) buildCollision(b *layers.BitmapLayers, w, h int) {
	if stones := s.channel(b, LayerStones, w, h); stones != nil {
		s.Collision.StampMask(stones, w, h, 1.0, 0)
	}
	if water := s.channel(b, LayerWater, w, h); water != nil {
		s.Collision.StampMask(water, w, h, 1.0, 0)
	}
	for i := range s.Scape.Elements {
		e := &s.Scape.Elements[i]
		if e.Kind == terrain.KindObject {
			s.Collision.StampDisc(float64(e.X), float64(e.Z), 1.0)
		}
	}
	if s.cfg.Collision.BlurSize > 0 {
		s.Collision.BoxBlur(s.cfg.Collision.BlurSize)
	}
}

// Update refreshes the view for the current camera state and mirrors it
// into the editor.
func (s *Session) Update() {
	s.Editor.CameraPos = s.Camera
	s.Editor.DetailScale = s.DetailScale
	s.View.Update(s.Camera, s.DetailScale)
}

// Raycast queries the collision field along a ground segment.
func (s *Session) Raycast(x0, z0, x1, z1 float64) *collision.Hit {
	return s.Collision.RaycastLine(x0, z0, x1, z1)
}

// channel extracts a layer's R plane rescaled to w×h, or nil when the
// layer is absent.
func (s *Session) channel(b *layers.BitmapLayers, name string, w, h int) []uint8 {
	l := b.Get(name)
	if l == nil {
		return nil
	}
	return l.Scaled(w, h).Channel(0)
}

// channelOrZero is channel with a zeroed fallback for optional masks.
func (s *Session) channelOrZero(b *layers.BitmapLayers, name string, w, h int) []uint8 {
	if c := s.channel(b, name, w, h); c != nil {
		return c
	}
	return make([]uint8, w*h)
}
