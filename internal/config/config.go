// Package config handles viewer configuration loading.
//
// The configuration file is optional: the scene path and window size always
// come from the command line, everything else falls back to Default.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings. Width and Height are overridden by
// the entry point's arguments.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// RenderConfig holds device-side settings.
type RenderConfig struct {
	ClearColor      [4]float32 `yaml:"clear_color"`
	GammaCorrection bool       `yaml:"gamma_correction"`
}

// CameraConfig tunes the fly camera.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	Zoom        float32    `yaml:"zoom"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the viewer's built-in values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Autumn 3D",
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.05, 0.05, 0.05, 1.0},
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			Speed:       2.5,
			Sensitivity: 0.1,
			Zoom:        45,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
