package model

import "fmt"

// GridRows/GridCols define the coarse A1-F8 addressing grid used to give
// dimensions and GD&T callouts a human-readable location tag (spec.md
// §4.3 Phase D, glossary "Grid reference").
const (
	GridRows = 6 // A-F, top to bottom
	GridCols = 8 // 1-8, left to right
)

// GridReference computes the coarse grid cell containing a pixel
// coordinate.
func GridReference(x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		return "A1"
	}
	col := int(float64(x) / float64(width) * GridCols)
	row := int(float64(y) / float64(height) * GridRows)
	if col >= GridCols {
		col = GridCols - 1
	}
	if col < 0 {
		col = 0
	}
	if row >= GridRows {
		row = GridRows - 1
	}
	if row < 0 {
		row = 0
	}
	return fmt.Sprintf("%c%d", 'A'+row, col+1)
}
