package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagAsset    = flag.String("asset", "", "Path to the glTF/GLB model")
	flagWidth    = flag.Int("width", 0, "Viewport width cap")
	flagHeight   = flag.Int("height", 0, "Viewport height cap")
	flagStepMode = flag.String("step-mode", "", "Wheel step mode: fixed or scaled")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file as well")
	flagHeadless = flag.Bool("headless", false, "Run without a window")
	flagFrames   = flag.Int("frames", 120, "Ticks to run in headless mode")
	flagSave     = flag.Bool("save-config", false, "Write the effective config to the config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Headless reports whether --headless was given, and the tick count to run.
func Headless() (bool, int) {
	return *flagHeadless, *flagFrames
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAsset != "" {
		cfg.Asset.Path = *flagAsset
	}
	if *flagWidth > 0 {
		cfg.Graphics.MaxWidth = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.MaxHeight = *flagHeight
	}
	if *flagStepMode != "" {
		cfg.Animation.StepMode = *flagStepMode
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
