// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Step modes for wheel animation.
const (
	// StepFixed advances every part by a constant amount per tick.
	StepFixed = "fixed"
	// StepScaled multiplies the per-tick amount by elapsed time × reference rate.
	StepScaled = "scaled"
)

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Camera    CameraConfig    `yaml:"camera"`
	Asset     AssetConfig     `yaml:"asset"`
	Animation AnimationConfig `yaml:"animation"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds render surface settings.
type GraphicsConfig struct {
	MaxWidth   int     `yaml:"max_width"`  // Viewport cap; the display size wins when smaller
	MaxHeight  int     `yaml:"max_height"` // Viewport cap
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"` // 0 = paced by vsync only
	Antialias  bool    `yaml:"antialias"`
	Samples    int     `yaml:"samples"`
	Background uint32  `yaml:"background"` // 0xRRGGBB
	GridSize   float32 `yaml:"grid_size"`
	GridDivs   int     `yaml:"grid_divisions"`
}

// CameraConfig holds the perspective camera and orbit controls.
type CameraConfig struct {
	FOV      float32    `yaml:"fov"` // Degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`

	RotateSpeed float32 `yaml:"rotate_speed"`
	ZoomSpeed   float32 `yaml:"zoom_speed"`
	PanSpeed    float32 `yaml:"pan_speed"`
	Damping     float32 `yaml:"damping"` // Fraction of pending motion applied per tick
	MinDistance float32 `yaml:"min_distance"`
	MaxDistance float32 `yaml:"max_distance"`
}

// AssetConfig holds the model source.
type AssetConfig struct {
	Path       string        `yaml:"path"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// AnimationConfig holds the wheel animation parameters.
type AnimationConfig struct {
	PartPrefix    string  `yaml:"part_prefix"`
	SpinStep      float64 `yaml:"spin_step"`  // Radians per tick
	SteerStep     float64 `yaml:"steer_step"` // Radians per tick
	StepMode      string  `yaml:"step_mode"`
	ReferenceRate float64 `yaml:"reference_rate"` // Hz, used by StepScaled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the standard robot scene settings.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			MaxWidth:   640,
			MaxHeight:  480,
			VSync:      true,
			FPSLimit:   0,
			Antialias:  true,
			Samples:    4,
			Background: 0xeeeeee,
			GridSize:   11,
			GridDivs:   10,
		},
		Camera: CameraConfig{
			FOV:         70,
			Near:        0.001,
			Far:         100,
			Position:    [3]float32{0, 4, 4},
			Target:      [3]float32{0, 0, 0},
			RotateSpeed: 0.005,
			ZoomSpeed:   0.1,
			PanSpeed:    0.002,
			Damping:     0.2,
			MinDistance: 0.5,
			MaxDistance: 50,
		},
		Asset: AssetConfig{
			Path:       "assets/models/robot.gltf",
			Retries:    0,
			RetryDelay: 500 * time.Millisecond,
		},
		Animation: AnimationConfig{
			PartPrefix:    "Wheel",
			SpinStep:      0.5,
			SteerStep:     0.01,
			StepMode:      StepFixed,
			ReferenceRate: 60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Graphics.MaxWidth <= 0 || c.Graphics.MaxHeight <= 0 {
		return fmt.Errorf("graphics: viewport cap must be positive, got %dx%d", c.Graphics.MaxWidth, c.Graphics.MaxHeight)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera: invalid clip range near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Damping <= 0 || c.Camera.Damping > 1 {
		return fmt.Errorf("camera: damping must be in (0, 1], got %g", c.Camera.Damping)
	}
	switch c.Animation.StepMode {
	case StepFixed:
	case StepScaled:
		if c.Animation.ReferenceRate <= 0 {
			return fmt.Errorf("animation: reference_rate must be positive in %s mode", StepScaled)
		}
	default:
		return fmt.Errorf("animation: unknown step_mode %q", c.Animation.StepMode)
	}
	if c.Asset.Retries < 0 {
		return fmt.Errorf("asset: retries must not be negative, got %d", c.Asset.Retries)
	}
	return nil
}

// Viewport returns the render surface size: the display size, capped at
// MaxWidth x MaxHeight. A non-positive display dimension means unknown and
// yields the cap.
func (g GraphicsConfig) Viewport(displayWidth, displayHeight int) (int, int) {
	w, h := g.MaxWidth, g.MaxHeight
	if displayWidth > 0 {
		w = min(w, displayWidth)
	}
	if displayHeight > 0 {
		h = min(h, displayHeight)
	}
	return w, h
}
