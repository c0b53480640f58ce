package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagStrategy = flag.String("load-strategy", "", "Model load strategy: waitAll or dontWaitAll")
	flagWidth    = flag.Float64("width", 0, "Map surface width in pixels")
	flagHeight   = flag.Float64("height", 0, "Map surface height in pixels")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagStrategy != "" {
		cfg.Plugin.ModelsLoadStrategy = *flagStrategy
	}
	if *flagWidth > 0 {
		cfg.Host.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Host.Height = *flagHeight
	}
}
