package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// RecognizeDigitLine runs the traditional OCR engine in single-line mode
// restricted to digits and a decimal point, grounded in wudi-pdfkit's
// gosseract client pattern (see tesseract.go) but configured for the
// narrow alphabet spec.md §4.3 Phase E's region-OCR check needs: "run
// the generic OCR in line mode restricted to digits and dot."
func RecognizeDigitLine(img image.Image) (string, float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", 0, fmt.Errorf("region ocr: encode crop: %w", err)
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("region ocr: set image: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", 0, fmt.Errorf("region ocr: set psm: %w", err)
	}
	if err := c.SetWhitelist("0123456789."); err != nil {
		return "", 0, fmt.Errorf("region ocr: set whitelist: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", 0, fmt.Errorf("region ocr: recognize: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	var conf float64
	if err == nil && len(boxes) > 0 {
		conf = boxes[0].Confidence / 100.0
	}

	return text, conf, nil
}
