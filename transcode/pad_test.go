package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadOrTrim(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		length  int
		want    []float64
	}{
		{"pad short input", []float64{1, 2}, 4, []float64{1, 2, 0, 0}},
		{"trim long input", []float64{1, 2, 3, 4}, 2, []float64{1, 2}},
		{"exact length", []float64{1, 2, 3}, 3, []float64{1, 2, 3}},
		{"empty input", nil, 3, []float64{0, 0, 0}},
		{"zero length", []float64{1, 2}, 0, []float64{}},
		{"negative length", []float64{1, 2}, -1, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PadOrTrim(tt.samples, tt.length))
		})
	}
}

func TestPadOrTrimRoundTrip(t *testing.T) {
	// Padding then trimming back recovers the original exactly
	original := []float64{0.1, -0.2, 0.3, -0.4, 0.5}

	padded := PadOrTrim(original, 16)
	require.Len(t, padded, 16)

	back := PadOrTrim(padded, len(original))
	assert.Equal(t, original, back)
}

func TestPadOrTrimDoesNotModifyInput(t *testing.T) {
	original := []float64{1, 2, 3, 4}

	_ = PadOrTrim(original, 2)
	_ = PadOrTrim(original, 8)

	assert.Equal(t, []float64{1, 2, 3, 4}, original)
}
