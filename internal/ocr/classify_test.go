package ocr

import (
	"testing"

	"github.com/MeKo-Tech/drawcheck/internal/model"
)

func TestClassifyExamples(t *testing.T) {
	cases := []struct {
		text string
		want model.TextRegionType
	}{
		{"25.4", model.TextTypeDimension},
		{"25.4 mm", model.TextTypeDimension},
		{"+0.05", model.TextTypeTolerance},
		{"Ø12.5", model.TextTypeDiameter},
		{"DIA 12.5", model.TextTypeDiameter},
		{"R5.0", model.TextTypeRadius},
		{"45°", model.TextTypeAngular},
		{"M8x1.25", model.TextTypeThread},
		{"UNC", model.TextTypeThread},
		{"H7", model.TextTypeToleranceClass},
		{"A-A", model.TextTypeSectionLabel},
		{"Housing bracket", model.TextTypeText},
	}
	for _, c := range cases {
		if got := Classify(c.text); got != c.want {
			t.Errorf("Classify(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
