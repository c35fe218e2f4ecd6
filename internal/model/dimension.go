package model

// Unit is the linear unit of a Dimension's value.
type Unit string

const (
	UnitMM Unit = "mm"
	UnitIn Unit = "in"
)

// FeatureType enumerates the kind of mechanical feature a Dimension
// describes. Distinct from TextRegionType: a Dimension is a semantic
// entity extracted by the vision LLM, not a raw OCR classification.
type FeatureType string

const (
	FeatureLinear    FeatureType = "linear"
	FeatureDiameter  FeatureType = "diameter"
	FeatureRadius    FeatureType = "radius"
	FeatureAngular   FeatureType = "angular"
	FeatureThread    FeatureType = "thread"
	FeatureChamfer   FeatureType = "chamfer"
	FeatureDepth     FeatureType = "depth"
	FeatureThickness FeatureType = "thickness"
)

// DimensionFlag records a quality or provenance annotation attached to a
// Dimension during ingestion. Stored as a set (map[DimensionFlag]bool)
// on Dimension so repeated phases can add flags idempotently.
type DimensionFlag string

const (
	FlagOCRVerified             DimensionFlag = "ocr_verified"
	FlagValidationFailed        DimensionFlag = "validation_failed"
	FlagValueNormalized         DimensionFlag = "value_normalized"
	FlagRegionOCRCorrected      DimensionFlag = "region_ocr_corrected"
	FlagSmallTextDetected       DimensionFlag = "small_text_detected"
	FlagReverified              DimensionFlag = "reverified"
	FlagCoordinateAdjusted      DimensionFlag = "coordinate_adjusted"
	FlagPossibleLetterContam    DimensionFlag = "possible_letter_contamination"
	FlagPossibleMissingDecimal  DimensionFlag = "possible_missing_decimal"
	FlagUnlikelyDimensionRange  DimensionFlag = "unlikely_dimension_range"
)

// BindingState describes whether a Dimension's item_number resolved
// against the BOM entity registry (spec.md §4.3 Phase D).
type BindingState string

const (
	BindingVerified   BindingState = "verified"
	BindingUnverified BindingState = "unverified"
	BindingUnbound    BindingState = "unbound"
)

// Dimension is a single measured value bound to a location on a drawing.
// Mutated only by the Ingestor's phases; frozen once handed to the
// Comparator (spec.md §3 Lifecycle).
type Dimension struct {
	Value *float64 // nil = pending
	Unit  Unit

	CoordX, CoordY int // pixel coordinates, clamped to image bounds
	GridRef        string

	FeatureType FeatureType

	ToleranceClass string // ISO 286 shaft/hole fit code, case-sensitive
	UpperTol       *float64
	LowerTol       *float64

	ItemNumber        string
	EntityDescription string
	Binding           BindingState

	Zone string

	Confidence float64
	Flags      map[DimensionFlag]bool

	// Side-band for LLM fields the schema didn't anticipate (spec.md §9
	// "dynamic dicts -> tagged structs").
	Extras map[string]any

	// RegionOCROriginal preserves a value replaced by a region-OCR digit
	// confusion correction (spec.md §4.3 Phase E).
	RegionOCROriginal *float64
}

// SetFlag marks a flag on the dimension, allocating the set if needed.
func (d *Dimension) SetFlag(f DimensionFlag) {
	if d.Flags == nil {
		d.Flags = make(map[DimensionFlag]bool)
	}
	d.Flags[f] = true
}

// HasFlag reports whether a flag is set.
func (d *Dimension) HasFlag(f DimensionFlag) bool {
	if d.Flags == nil {
		return false
	}
	return d.Flags[f]
}

// ApplyConfidencePenalty multiplies confidence by factor, clamping to
// [0, 1].
func (d *Dimension) ApplyConfidencePenalty(factor float64) {
	d.Confidence *= factor
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	if d.Confidence < 0 {
		d.Confidence = 0
	}
}

// PartListItem is a single bill-of-materials row.
type PartListItem struct {
	ItemNumber  string
	Description string
	Material    string
	Quantity    int
	Weight      *float64
	Unit        string
}

// GDTCallout is a single geometric-dimensioning-and-tolerancing symbol.
type GDTCallout struct {
	Symbol  string
	Value   *float64
	Datum   string
	GridRef string
	CoordX  int
	CoordY  int
}

// Zone is a named region of a drawing (e.g. a detail or section view),
// enriched in Phase D with a grid span.
type Zone struct {
	Name       string
	StartRef   string
	EndRef     string
}

// MachineState is the structured extraction of a single drawing: its
// dimensions, BOM, GD&T callouts, title block, and raw OCR text. Created
// per drawing by the Ingestor; frozen on handoff to the Comparator.
type MachineState struct {
	Zones       []Zone
	Dimensions  []Dimension
	PartList    []PartListItem
	GDTCallouts []GDTCallout
	TitleBlock  map[string]string
	RawText     string

	// Image is the canonical image this state was extracted from; kept
	// so the Comparator and Reviewer can reach OCR-cached text regions
	// without re-loading.
	Image *Image

	// Regions is the OCR engine's output for this drawing, cached here
	// so the Reviewer's region refinement (spec.md §4.5) can search
	// already-computed OCR text instead of re-running detection.
	Regions []TextRegion
}
