// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Generation GenerationConfig `yaml:"generation"`
	Collision  CollisionConfig  `yaml:"collision"`
	Editor     EditorConfig     `yaml:"editor"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WorldConfig holds world bounds and the layer bundle location.
type WorldConfig struct {
	LayersFile string  `yaml:"layers_file"` // PSD bundle with named input layers
	MinX       float32 `yaml:"min_x"`
	MaxX       float32 `yaml:"max_x"`
	MinZ       float32 `yaml:"min_z"`
	MaxZ       float32 `yaml:"max_z"`
	MinY       float32 `yaml:"min_y"`
	MaxY       float32 `yaml:"max_y"`
}

// GenerationConfig tunes element generation cost and density.
type GenerationConfig struct {
	StepX         int     `yaml:"step_x"`         // heightmap sampling stride in X
	StepZ         int     `yaml:"step_z"`         // heightmap sampling stride in Z
	DistFactor    float32 `yaml:"dist_factor"`    // scales ground sample pop-in distance
	SteepThresh   float32 `yaml:"steep_thresh"`   // curvature below which flat cells are skipped
	TreeModulo    int     `yaml:"tree_modulo"`    // one tree per this many candidate cells
	GrassModulo   int     `yaml:"grass_modulo"`   // one grass tuft per this many candidate cells
	FlowerModulo  int     `yaml:"flower_modulo"`  // one flower per this many candidate cells
	ThreshOuter   int     `yaml:"thresh_outer"`   // contour level for stones/water/road rims
	ThreshInner   int     `yaml:"thresh_inner"`   // inner road surface contour level
	ThreshCleanup int     `yaml:"thresh_cleanup"` // pad contour level
	DetailScale   float32 `yaml:"detail_scale"`   // global LOD multiplier
}

// CollisionConfig sizes the collision field.
type CollisionConfig struct {
	Width          int  `yaml:"width"`
	Height         int  `yaml:"height"`
	BlurSize       int  `yaml:"blur_size"`        // box blur radius, 0 disables
	SolidStartHits bool `yaml:"solid_start_hits"` // rays starting inside solid hit immediately
}

// EditorConfig holds object editor settings.
type EditorConfig struct {
	ObjectsFile   string `yaml:"objects_file"` // PNG persisting object placements
	ObjectsWidth  int    `yaml:"objects_width"`
	ObjectsHeight int    `yaml:"objects_height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			LayersFile: "data/world.psd",
			MinX:       -250, MaxX: 250,
			MinZ: -250, MaxZ: 250,
			MinY: 0, MaxY: 1000,
		},
		Generation: GenerationConfig{
			StepX:         1,
			StepZ:         1,
			DistFactor:    1,
			SteepThresh:   1,
			TreeModulo:    16,
			GrassModulo:   2,
			FlowerModulo:  8,
			ThreshOuter:   128,
			ThreshInner:   160,
			ThreshCleanup: 64,
			DetailScale:   1,
		},
		Collision: CollisionConfig{
			Width:    1024,
			Height:   1024,
			BlurSize: 2,
		},
		Editor: EditorConfig{
			ObjectsFile:   "data/objects.png",
			ObjectsWidth:  1024,
			ObjectsHeight: 1024,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
