// Package animutils provides the geometry, ROI/zoom conversion and frame
// handling used when setting up animal behaviour recordings.
//
// The numeric building blocks live in their own packages and can be used
// without this one:
//
//   - pkg/geometry: point-to-segment distance and projection, vector helpers
//   - pkg/roi: conversion between pixel regions and normalised camera zooms
//   - pkg/processing: loading, cropping, resizing, saving and overlays
//   - pkg/calibration: mouse-driven region selection and its overlay
//   - pkg/detection: vision-model suggestions for the camera zoom
//
// Toolkit binds them to a Config:
//
//	tk, err := animutils.New(animutils.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	frame, _ := tk.LoadImage("frame.jpg")
//	zoom, det, err := tk.SuggestZoom(ctx, frame)
//	if err == nil && det.Label != "none" {
//		_ = tk.ApplyZoom(zoom)
//	}
//	cropped, _ := tk.CropCamera(frame)
//
// The library is silent unless SetLogger is called.
package animutils

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/animlab/animutils/internal/config"
	"github.com/animlab/animutils/internal/logging"
	"github.com/animlab/animutils/internal/utils"
	"github.com/animlab/animutils/pkg/calibration"
	"github.com/animlab/animutils/pkg/client"
	"github.com/animlab/animutils/pkg/detection"
	"github.com/animlab/animutils/pkg/ollama"
	"github.com/animlab/animutils/pkg/processing"
	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// Version of the animutils library
const Version = "0.3.0"

// Config is the toolkit configuration
type Config = config.Config

// DefaultConfig returns the default configuration
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a JSON configuration file
func LoadConfig(path string) (*Config, error) { return config.LoadFromFile(path) }

// ConfigPath returns the default configuration file location
func ConfigPath() string { return config.GetConfigPath() }

// SetLogger routes library logs to l. Passing nil silences them again.
func SetLogger(l *slog.Logger) { logging.Set(l) }

// Toolkit provides a high-level interface over a camera configuration
type Toolkit struct {
	cfg       *Config
	processor *processing.Processor
	detector  *detection.Detector
}

// New creates a toolkit using an Ollama server for detection. A nil cfg
// uses DefaultConfig.
func New(cfg *Config) (*Toolkit, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	oc, err := ollama.NewClient(cfg.Detection.URL)
	if err != nil {
		return nil, fmt.Errorf("detection.url: %w", err)
	}
	if cfg.Detection.TimeoutSeconds > 0 {
		oc.SetTimeout(time.Duration(cfg.Detection.TimeoutSeconds) * time.Second)
	}
	return NewWithClient(cfg, oc)
}

// NewWithClient creates a toolkit with a custom vision client
func NewWithClient(cfg *Config, vc client.VisionClient) (*Toolkit, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	det := detection.NewDetector(vc)
	det.MinConfidence = cfg.Detection.MinConfidence
	return &Toolkit{
		cfg:       cfg,
		processor: processing.NewProcessor(),
		detector:  det,
	}, nil
}

// Config returns the live configuration
func (t *Toolkit) Config() *Config {
	return t.cfg
}

// LoadImage loads a frame from a file path or URL
func (t *Toolkit) LoadImage(source string) (image.Image, error) {
	return t.processor.LoadImageSmart(source)
}

// CameraROI returns the configured zoom as pixels of the camera resolution
func (t *Toolkit) CameraROI() (types.ROI, error) {
	return t.cfg.CameraROI()
}

// CropCamera crops a frame to the configured zoom. The zoom is applied to
// the frame's own size, so previews smaller than the camera resolution work.
func (t *Toolkit) CropCamera(img image.Image) (*image.NRGBA, error) {
	return t.processor.CropToZoom(img, t.cfg.Camera.Zoom)
}

// ApplyZoom validates z against the camera resolution and stores it
func (t *Toolkit) ApplyZoom(z types.Zoom) error {
	if _, err := roi.ZoomToROI(z, t.cfg.Camera.Resolution); err != nil {
		return err
	}
	t.cfg.Camera.Zoom = z
	return nil
}

// SuggestZoom asks the vision model where the arena is in img and returns
// the matching zoom. A detection labelled "none" carries the full frame.
func (t *Toolkit) SuggestZoom(ctx context.Context, img image.Image) (types.Zoom, *types.Detection, error) {
	d := t.cfg.Detection
	b64, err := t.processor.PrepareImageForModel(img, d.SendFormat, d.MaxSendDim, d.SendQuality)
	if err != nil {
		return types.Zoom{}, nil, fmt.Errorf("prepare image: %w", err)
	}

	res := processing.Resolution(img)
	r, det, err := t.detector.SuggestROI(ctx, d.Model, b64, res)
	if err != nil {
		return types.Zoom{}, nil, err
	}
	if det.Label == "none" {
		logging.L().Info("no arena found, keeping full frame")
		return types.FullZoom, det, nil
	}
	z, err := roi.ROIToZoom(r, res)
	if err != nil {
		return types.Zoom{}, nil, err
	}
	logging.L().Info("suggested zoom", "label", det.Label, "confidence", det.Confidence, "zoom", z)
	return z, det, nil
}

// Styles builds overlay styles from the configured colours
func (t *Toolkit) Styles() (calibration.Styles, error) {
	o := t.cfg.Overlay
	roiCol, err := processing.NamedColor(o.ROIColor)
	if err != nil {
		return calibration.Styles{}, err
	}
	boundCol, err := processing.NamedColor(o.BoundaryColor)
	if err != nil {
		return calibration.Styles{}, err
	}
	pointCol, err := processing.NamedColor(o.PointColor)
	if err != nil {
		return calibration.Styles{}, err
	}

	st := calibration.DefaultStyles()
	st.ROI = processing.Style{Color: roiCol, Width: o.StrokeWidth, Dashed: o.Dashed}
	st.Boundary = processing.Style{Color: boundCol, Width: o.StrokeWidth}
	st.Cursor.Color = boundCol
	st.Nearest.Color = pointCol
	st.CrosshairRadius = o.CrosshairRadius
	return st, nil
}

// Calibrate draws c over img with the configured styles. A zero
// SnapDistance takes the configured one.
func (t *Toolkit) Calibrate(img image.Image, c calibration.Calibration) (*image.RGBA, error) {
	st, err := t.Styles()
	if err != nil {
		return nil, err
	}
	if c.SnapDistance == 0 {
		c.SnapDistance = t.cfg.Overlay.SnapDistance
	}
	return c.Render(img, st)
}

// SaveFrame writes img into the output directory as name, adding a
// numeric suffix instead of overwriting. It returns the written path.
func (t *Toolkit) SaveFrame(img image.Image, name string) (string, error) {
	out := t.cfg.Output
	if err := utils.EnsureDir(out.Dir); err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	name = utils.SanitizeFilename(name)
	if name == "" {
		name = "frame"
	}

	path, err := utils.NewName(filepath.Join(out.Dir, name), "."+out.Format, utils.ActionNewFile)
	if err != nil {
		return "", err
	}
	if err := t.processor.SaveImage(img, path, out.Format, out.Quality, out.Lossless); err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		logging.L().Debug("frame saved", "path", path, "size", utils.FormatFileSize(info.Size()))
	}
	return path, nil
}

// ListFrames returns the image files in dir, sorted, with dir prefixed
func (t *Toolkit) ListFrames(dir string) ([]string, error) {
	files, err := utils.ListFiles(dir, nil, true, true)
	if err != nil {
		return nil, err
	}
	frames := files[:0]
	for _, f := range files {
		if utils.IsImageFile(f) {
			frames = append(frames, f)
		}
	}
	return frames, nil
}
