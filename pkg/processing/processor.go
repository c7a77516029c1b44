// Package processing loads, crops, resizes and saves frames for the
// calibration and zoom helpers.
package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/animlab/animutils/internal/logging"
	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// Processor handles image processing operations
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Resolution returns the pixel dimensions of img
func Resolution(img image.Image) types.Resolution {
	b := img.Bounds()
	return types.Resolution{Width: b.Dx(), Height: b.Dy()}
}

// LoadImageFromURL downloads and decodes an image
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "animutils/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	logging.L().Debug("downloaded image", "url", imageURL, "bytes", len(data))
	return decodeImageFromBytes(data)
}

// LoadImage loads an image from disk, falling back to an explicit WebP decode
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		logging.L().Debug("loaded image", "path", path, "size", img.Bounds().Size())
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageSmart loads from a URL when source looks like one, else from disk
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

func decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// PrepareImageForModel downsizes img so its long side is at most maxDim and
// returns it base64 encoded for a vision model.
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		if w, h := b.Dx(), b.Dy(); w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CropToROI crops img to the pixel region r, relative to the image origin
func (p *Processor) CropToROI(img image.Image, r types.ROI) (*image.NRGBA, error) {
	bounds := img.Bounds()
	rect := roi.Normalize(r).Rect().Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("%w: %v does not overlap %v", types.ErrInvalidROI, r.Rect(), bounds)
	}
	logging.L().Debug("crop", "roi", rect)
	return imaging.Crop(img, rect), nil
}

// CropToZoom crops img to the zoom window z
func (p *Processor) CropToZoom(img image.Image, z types.Zoom) (*image.NRGBA, error) {
	r, err := roi.ZoomToROI(z, Resolution(img))
	if err != nil {
		return nil, err
	}
	return p.CropToROI(img, r)
}

// ImgResize scales img by resize, or by 1/resize when back is set.
// Upscaling uses Lanczos, downscaling a box filter.
func (p *Processor) ImgResize(img image.Image, resize float64, back bool) (*image.NRGBA, error) {
	if resize <= 0 {
		return nil, fmt.Errorf("%w: resize factor %v", types.ErrInvalidInput, resize)
	}
	if back {
		resize = 1 / resize
	}
	dims := roi.NewDims(Resolution(img), resize)
	if !dims.Valid() {
		return nil, fmt.Errorf("%w: resize %v gives %dx%d", types.ErrInvalidInput, resize, dims.Width, dims.Height)
	}
	filter := imaging.Box
	if resize > 1 {
		filter = imaging.Lanczos
	}
	return imaging.Resize(img, dims.Width, dims.Height, filter), nil
}

// ResizeTo scales img to exactly res
func (p *Processor) ResizeTo(img image.Image, res types.Resolution) (*image.NRGBA, error) {
	if !res.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", types.ErrInvalidInput, res.Width, res.Height)
	}
	filter := imaging.Box
	if res.Width > img.Bounds().Dx() {
		filter = imaging.Lanczos
	}
	return imaging.Resize(img, res.Width, res.Height, filter), nil
}

// SaveImage writes img to path as jpg, png or webp
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	var err error
	switch strings.ToLower(format) {
	case "webp":
		err = saveWebP(img, path, quality, lossless)
	case "png":
		err = imaging.Save(img, path)
	default:
		err = imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	logging.L().Debug("saved image", "path", path, "format", format)
	return nil
}

func saveWebP(img image.Image, path string, quality int, lossless bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webp.Encode(f, img, &webp.Options{Lossless: lossless, Quality: float32(quality)}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
