package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorizeTempo(t *testing.T) {
	tests := []struct {
		name          string
		tempo, energy float64
		want          RGB
	}{
		{"fast and energetic", 150, 0.9, RGB{R: 191, G: 229, B: 63}},
		{"slowest tempo", 60, 0.0, RGB{R: 0, G: 0, B: 255}},
		{"fastest tempo", 180, 1.0, RGB{R: 255, G: 255, B: 0}},
		{"below range clamps", 20, 0.5, RGB{R: 0, G: 127, B: 255}},
		{"above range clamps", 240, 0.5, RGB{R: 255, G: 127, B: 0}},
		{"midpoint", 120, 0.5, RGB{R: 127, G: 127, B: 127}},
		{"energy out of range", 120, 1.7, RGB{R: 127, G: 255, B: 127}},
		{"negative energy", 120, -0.3, RGB{R: 127, G: 0, B: 127}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorizeTempo(tt.tempo, tt.energy))
		})
	}
}
