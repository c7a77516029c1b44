package detection

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/animlab/animutils/internal/logging"
	"github.com/animlab/animutils/pkg/client"
	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// SimpleTestPrompt checks that the model receives the image at all
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// ArenaPrompt asks for the experimental arena so the camera can be zoomed onto it
const ArenaPrompt = `You locate the experimental arena in a top-down camera frame used to record animal behaviour.

Return JSON only:
{
  "label": "string",
  "confidence": 0.0,
  "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

RULES
- Coordinates are fractions of the frame in [0,1], NOT pixels. x,y is the top-left corner.
- The box must tightly contain the arena, tank or enclosure, including its walls.
- If no arena is visible return label "none" with box {"x":0,"y":0,"w":1,"h":1}.
- JSON only. No markdown, no comments, no trailing commas.`

// AnimalPrompt asks for the animal itself
const AnimalPrompt = `Locate the animal in this frame. Return JSON only with the fields
"label", "confidence", "box" ({"x","y","w","h"} as fractions of the frame in [0,1], x,y top-left),
"description" and "tags". If there is no animal return label "none" and the full-frame box.`

// fallbackLabels mark replies that should not be trusted
var fallbackLabels = []string{"none", "unclear", "empty", "error", "fallback"}

// Detector locates regions in frames through a vision model
type Detector struct {
	client client.VisionClient
	// MinConfidence below which a detection is replaced by the full frame
	MinConfidence float64
}

// NewDetector creates a detector backed by client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client, MinConfidence: 0.3}
}

// DetectRegion locates the arena in the frame
func (d *Detector) DetectRegion(ctx context.Context, model, imageB64 string) (*types.Detection, error) {
	return d.DetectWithPrompt(ctx, model, imageB64, ArenaPrompt)
}

// DetectWithPrompt locates a region using a custom prompt. The returned box
// always lies inside the frame.
func (d *Detector) DetectWithPrompt(ctx context.Context, model, imageB64, prompt string) (*types.Detection, error) {
	det, err := d.client.LocateRegion(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, fmt.Errorf("locate region: %w", err)
	}
	det.Box = FitZoom(det.Box)
	det.Tags = normalizeTags(det.Tags)

	if isFallback(det) || det.Confidence < d.MinConfidence {
		logging.L().Warn("using full frame", "label", det.Label, "confidence", det.Confidence)
		det.Label = "none"
		det.Box = types.FullZoom
	}
	return det, nil
}

// SuggestROI locates the arena and converts it to a pixel ROI for res
func (d *Detector) SuggestROI(ctx context.Context, model, imageB64 string, res types.Resolution) (types.ROI, *types.Detection, error) {
	det, err := d.DetectRegion(ctx, model, imageB64)
	if err != nil {
		return types.ROI{}, nil, err
	}
	r, err := roi.ZoomToROI(det.Box, res)
	if err != nil {
		return types.ROI{}, det, err
	}
	return roi.CheckROI(r, res), det, nil
}

// TestVision checks that the model can see the image
func (d *Detector) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// FitZoom forces a zoom into the frame: NaN components are dropped to the
// full frame, the origin is clamped to [0,1] and the size trimmed so the box
// ends inside the frame.
func FitZoom(z types.Zoom) types.Zoom {
	for _, v := range []float64{z.X, z.Y, z.W, z.H} {
		if math.IsNaN(v) {
			return types.FullZoom
		}
	}
	x, y := clamp(z.X, 0, 1), clamp(z.Y, 0, 1)
	return types.Zoom{
		X: x,
		Y: y,
		W: clamp(z.W, 0, 1-x),
		H: clamp(z.H, 0, 1-y),
	}
}

func isFallback(det *types.Detection) bool {
	label := strings.ToLower(det.Label)
	for _, f := range fallbackLabels {
		if strings.Contains(label, f) {
			return true
		}
	}
	for _, tag := range det.Tags {
		if tag == "fallback" {
			return true
		}
	}
	return det.Box.W == 0 || det.Box.H == 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeTags lowercases, de-duplicates and caps tags at five
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
