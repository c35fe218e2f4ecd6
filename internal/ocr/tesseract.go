package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

// pageSegModes are the two page-segmentation modes spec.md §4.2 requires
// at minimum: "sparse text" and "uniform block".
var pageSegModes = []gosseract.PageSegMode{
	gosseract.PSM_SPARSE_TEXT,
	gosseract.PSM_SINGLE_BLOCK,
}

// TraditionalEngine is the generic glyph recognizer (spec.md §4.2),
// grounded in wudi-pdfkit's gosseract-backed Engine.
type TraditionalEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTraditionalEngine constructs a gosseract-backed Engine.
func NewTraditionalEngine() *TraditionalEngine {
	return &TraditionalEngine{clientFactory: gosseract.NewClient}
}

func (e *TraditionalEngine) Detect(ctx context.Context, img *model.Image) ([]model.TextRegion, error) {
	width, height := img.Bounds()
	if width == 0 || height == 0 {
		return nil, nil
	}

	var all []model.TextRegion
	for _, psm := range pageSegModes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		regions, err := e.detectWithMode(img, psm, width, height)
		if err != nil {
			slog.Warn("traditional ocr detector failed", "psm", psm, "error", err)
			continue
		}
		all = append(all, regions...)
	}
	return all, nil
}

func (e *TraditionalEngine) detectWithMode(img *model.Image, psm gosseract.PageSegMode, width, height int) ([]model.TextRegion, error) {
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(encodeForTesseract(img)); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetPageSegMode(psm); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("get bounding boxes: %w", err)
	}

	regions := make([]model.TextRegion, 0, len(boxes))
	for _, b := range boxes {
		text := b.Word
		if text == "" {
			continue
		}
		poly := model.RectFromBox(float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Dx()), float64(b.Box.Dy()))
		cx := float64(b.Box.Min.X+b.Box.Dx()/2) / float64(width) * 100
		cy := float64(b.Box.Min.Y+b.Box.Dy()/2) / float64(height) * 100
		regions = append(regions, model.TextRegion{
			Text:       text,
			Type:       Classify(text),
			Confidence: b.Confidence / 100.0,
			Polygon:    poly,
			CenterPctX: cx,
			CenterPctY: cy,
			Source:     model.DetectionOCR,
		})
	}
	return regions, nil
}

// encodeForTesseract decodes the canonical image bytes and re-encodes
// them as PNG (PNG input included), since gosseract expects a format it
// can decode directly. Decode or encode failures fall back to the
// original bytes.
func encodeForTesseract(img *model.Image) []byte {
	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return img.Bytes
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return img.Bytes
	}
	return buf.Bytes()
}
