package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLayers = flag.String("layers", "", "Path to the world layer bundle (PSD)")
	flagDetail = flag.Float64("detail", 0, "Global detail scale override")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLayers != "" {
		cfg.World.LayersFile = *flagLayers
	}
	if *flagDetail > 0 {
		cfg.Generation.DetailScale = float32(*flagDetail)
	}
}
