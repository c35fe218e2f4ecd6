package model

// Balloon is an overlay marker anchored at a dimension's pixel
// coordinate, tagged with its balloon number and status, suitable for
// rendering by an external collaborator (spec.md §6).
type Balloon struct {
	BalloonNumber  int
	Value          *float64
	Unit           Unit
	CoordX, CoordY int
	ToleranceClass string
	Nominal        *float64
	UpperTol       *float64
	LowerTol       *float64
	Status         Status
}

// LogEntry is one append-only agent-log record carried alongside the
// pipeline's immutable value-passing between stages (spec.md §9).
type LogEntry struct {
	Stage   string // "loader" | "ocr" | "ingestor" | "comparator" | "reviewer"
	Kind    string // "thought" | "finding" | "complete" | "error"
	Message string
	Fields  map[string]any
}
