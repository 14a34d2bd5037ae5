// Package config handles editor configuration loading and management.
package config

import "time"

// Config holds all editor settings.
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Camera   CameraConfig   `yaml:"camera"`
	Textures TexturesConfig `yaml:"textures"`
	Editor   EditorConfig   `yaml:"editor"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewportConfig holds the size of the render surface used for picking.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig holds projection settings.
type CameraConfig struct {
	FovY float32 `yaml:"fov_y"` // Degrees
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

// TexturesConfig holds texture loading settings.
type TexturesConfig struct {
	CatalogPath  string        `yaml:"catalog_path"` // YAML list of system preset textures
	PreviewSize  int           `yaml:"preview_size"` // Embedded texture thumbnail edge, pixels
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxBytes     int64         `yaml:"max_bytes"`
	MaxPixels    int           `yaml:"max_pixels"` // Largest decoded image, width x height
	Preload      bool          `yaml:"preload"`
}

// EditorConfig holds material editing behavior.
type EditorConfig struct {
	// ReapplyMode controls which depthWrite/opacity/wireframe values survive a
	// material class change: "legacy" skips false and zero values, "defined" keeps all.
	ReapplyMode string `yaml:"reapply_mode"`
	// FitSize is the edge length the largest model extent is scaled to on load.
	FitSize float32 `yaml:"fit_size"`
	// Fit enables model framing on load.
	Fit bool `yaml:"fit"`
}

// StoreConfig holds session persistence settings.
type StoreConfig struct {
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Width:  800,
			Height: 600,
		},
		Camera: CameraConfig{
			FovY: 45,
			Near: 0.1,
			Far:  1000,
		},
		Textures: TexturesConfig{
			CatalogPath:  "",
			PreviewSize:  75,
			FetchTimeout: 30 * time.Second,
			MaxBytes:     64 << 20,
			MaxPixels:    1 << 26,
			Preload:      false,
		},
		Editor: EditorConfig{
			ReapplyMode: "legacy",
			FitSize:     2.5,
			Fit:         true,
		},
		Store: StoreConfig{
			Path:   "",
			Bucket: "threeEdit",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
