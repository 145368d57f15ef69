// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds camera projection and navigation settings.
type CameraConfig struct {
	FOVDegrees       float32 `yaml:"fov_degrees"`
	Near             float32 `yaml:"near"`
	Far              float32 `yaml:"far"`
	MoveSpeed        float32 `yaml:"move_speed"`        // world units per frame while a key is held
	MouseSensitivity float32 `yaml:"mouse_sensitivity"` // radians per pixel of drag
	FitPadding       float32 `yaml:"fit_padding"`
	FitOnLoad        bool    `yaml:"fit_on_load"`
}

// RenderConfig holds rendering settings.
type RenderConfig struct {
	Wireframe  bool       `yaml:"wireframe"`
	ClearColor [4]float32 `yaml:"clear_color"`
}

// ViewerConfig holds application behaviour settings.
type ViewerConfig struct {
	WatchFile        bool   `yaml:"watch_file"`
	ScreenshotDir    string `yaml:"screenshot_dir"`
	ScreenshotFormat string `yaml:"screenshot_format"` // "png" or "bmp"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "gltfviewer - WASD move, drag to look, Esc quit",
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      false,
		},
		Camera: CameraConfig{
			FOVDegrees:       45,
			Near:             0.1,
			Far:              100,
			MoveSpeed:        0.1,
			MouseSensitivity: 0.005,
			FitPadding:       1.2,
			FitOnLoad:        true,
		},
		Render: RenderConfig{
			Wireframe:  true,
			ClearColor: [4]float32{0.2, 0.3, 0.4, 1.0},
		},
		Viewer: ViewerConfig{
			WatchFile:        false,
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
