package model

// TextRegionType classifies an OCR text region by its printed content,
// per the regex/heuristic table in spec.md §4.2. Classification is
// purely lexical; no model is involved.
type TextRegionType string

const (
	TextTypeDimension      TextRegionType = "dimension"
	TextTypeTolerance      TextRegionType = "tolerance"
	TextTypeToleranceClass TextRegionType = "tolerance_class"
	TextTypeDiameter       TextRegionType = "diameter"
	TextTypeRadius         TextRegionType = "radius"
	TextTypeAngular        TextRegionType = "angular"
	TextTypeThread         TextRegionType = "thread"
	TextTypeChamfer        TextRegionType = "chamfer"
	TextTypeDepth          TextRegionType = "depth"
	TextTypeThickness      TextRegionType = "thickness"
	TextTypeGDT            TextRegionType = "gdt"
	TextTypeSectionLabel   TextRegionType = "section_label"
	TextTypeSurfaceFinish  TextRegionType = "surface_finish"
	TextTypeMaterial       TextRegionType = "material"
	TextTypeText           TextRegionType = "text"
)

// DetectionMethod records which OCR detector (or fallback) produced a
// region or refined a review finding's coordinates.
type DetectionMethod string

const (
	DetectionOCR       DetectionMethod = "ocr_detected"
	DetectionCNN       DetectionMethod = "cnn_detected"
	DetectionAIFallback DetectionMethod = "ai_fallback"
	DetectionNone      DetectionMethod = "none"
)

// DetectionConfidence is the fixed confidence assigned to a detection
// method when it is the final resolver of a coordinate, per spec.md §4.5.
func DetectionConfidence(m DetectionMethod) float64 {
	switch m {
	case DetectionOCR:
		return 0.85
	case DetectionCNN:
		return 0.95
	case DetectionAIFallback:
		return 0.5
	default:
		return 0.3
	}
}

// TextRegion is one piece of OCR output: recognized text, a light type
// classification, a confidence score, and its bounding polygon. Immutable
// once produced by the OCR Engine.
type TextRegion struct {
	Text       string
	Type       TextRegionType
	Confidence float64
	Polygon    [4]Point // pixel-valued, clockwise from top-left
	CenterPctX float64  // 0-100
	CenterPctY float64  // 0-100
	Source     DetectionMethod
	Value      *float64 // numeric value if the CNN engine parsed one directly
}

// BBox returns the axis-aligned bounding box of the region's polygon.
func (t TextRegion) BBox() Rect {
	minX, maxX := t.Polygon[0].X, t.Polygon[0].X
	minY, maxY := t.Polygon[0].Y, t.Polygon[0].Y
	for _, p := range t.Polygon[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Center returns the pixel center of the region's bounding box.
func (t TextRegion) Center() Point {
	b := t.BBox()
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// RectFromBox builds a 4-point clockwise polygon for an axis-aligned box.
func RectFromBox(x, y, w, h float64) [4]Point {
	return [4]Point{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}
