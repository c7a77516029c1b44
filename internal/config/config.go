package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/animlab/animutils/internal/logging"
	"github.com/animlab/animutils/pkg/processing"
	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Camera    CameraConfig    `json:"camera"`
	Overlay   OverlayConfig   `json:"overlay"`
	Detection DetectionConfig `json:"detection"`
	Output    OutputConfig    `json:"output"`
}

// CameraConfig is the recording frame size and the hardware zoom window
type CameraConfig struct {
	Resolution types.Resolution `json:"resolution"`
	Zoom       types.Zoom       `json:"zoom"`
}

// OverlayConfig controls the calibration drawing
type OverlayConfig struct {
	StrokeWidth     float64 `json:"stroke_width"`
	CrosshairRadius float64 `json:"crosshair_radius"`
	SnapDistance    float64 `json:"snap_distance"`
	ROIColor        string  `json:"roi_color"`
	BoundaryColor   string  `json:"boundary_color"`
	PointColor      string  `json:"point_color"`
	Dashed          bool    `json:"dashed"`
}

// DetectionConfig points at the vision model used to suggest a zoom
type DetectionConfig struct {
	URL            string  `json:"url"`
	Model          string  `json:"model"`
	SendFormat     string  `json:"send_format"`
	MaxSendDim     int     `json:"max_send_dim"`
	SendQuality    int     `json:"send_quality"`
	MinConfidence  float64 `json:"min_confidence"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// OutputConfig holds configuration for saved frames
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Dir      string `json:"dir"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Resolution: types.Resolution{Width: 832, Height: 624},
			Zoom:       types.FullZoom,
		},
		Overlay: OverlayConfig{
			StrokeWidth:     2,
			CrosshairRadius: 5,
			SnapDistance:    5,
			ROIColor:        "red",
			BoundaryColor:   "white",
			PointColor:      "green",
		},
		Detection: DetectionConfig{
			URL:            "http://localhost:11434",
			Model:          "llava",
			SendFormat:     "jpg",
			MaxSendDim:     1024,
			SendQuality:    85,
			MinConfidence:  0.3,
			TimeoutSeconds: 300,
		},
		Output: OutputConfig{
			Format:  "jpg",
			Quality: 90,
			Dir:     "./output",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	logging.L().Debug("loaded config", "path", filename)
	return cfg, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Camera.Resolution.Valid() {
		return fmt.Errorf("camera.resolution must be positive, got %dx%d",
			c.Camera.Resolution.Width, c.Camera.Resolution.Height)
	}
	if _, err := c.CameraROI(); err != nil {
		return fmt.Errorf("camera.zoom: %w", err)
	}

	if c.Overlay.StrokeWidth <= 0 {
		return fmt.Errorf("overlay.stroke_width must be positive")
	}
	if c.Overlay.SnapDistance < 0 {
		return fmt.Errorf("overlay.snap_distance cannot be negative")
	}
	for field, name := range map[string]string{
		"roi_color":      c.Overlay.ROIColor,
		"boundary_color": c.Overlay.BoundaryColor,
		"point_color":    c.Overlay.PointColor,
	} {
		if _, err := processing.NamedColor(name); err != nil {
			return fmt.Errorf("overlay.%s: %w", field, err)
		}
	}

	if c.Detection.MinConfidence < 0 || c.Detection.MinConfidence > 1 {
		return fmt.Errorf("detection.min_confidence must be between 0 and 1")
	}
	if c.Detection.SendQuality < 1 || c.Detection.SendQuality > 100 {
		return fmt.Errorf("detection.send_quality must be between 1 and 100")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	switch strings.ToLower(c.Output.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be jpg, png or webp, got %q", c.Output.Format)
	}
	return nil
}

// CameraROI returns the pixel region selected by the camera zoom
func (c *Config) CameraROI() (types.ROI, error) {
	return roi.ZoomToROI(c.Camera.Zoom, c.Camera.Resolution)
}

// SetCameraROI stores r, clamped to the camera resolution, as the camera zoom
func (c *Config) SetCameraROI(r types.ROI) error {
	res := c.Camera.Resolution
	z, err := roi.ROIToZoom(roi.CheckROI(roi.Normalize(r), res), res)
	if err != nil {
		return err
	}
	c.Camera.Zoom = z
	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "animutils", "config.json")
}
