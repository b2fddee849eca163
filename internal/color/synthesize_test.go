package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func assertNear(t *testing.T, want, got RGB, tolerance int) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, float64(tolerance), "red")
	assert.InDelta(t, want.G, got.G, float64(tolerance), "green")
	assert.InDelta(t, want.B, got.B, float64(tolerance), "blue")
}

func TestSynthesize_RockAtPopularity80(t *testing.T) {
	w := DefaultClassifier().Classify([]string{"classic rock", "metal"})

	got := Synthesize(w, Modulation{Popularity: intPtr(80)})

	assert.Equal(t, RGB{R: 209, G: 33, B: 33}, got)
}

func TestSynthesize_FallbackAtDefaultPopularity(t *testing.T) {
	w := DefaultClassifier().Classify(nil)

	got := Synthesize(w, Modulation{})

	// CYAN (44,178,178), GREEN (47,178,44), BLUE (44,82,178) mixed 1.0 : 0.7 : 0.5
	assertNear(t, RGB{R: 44, G: 156, B: 135}, got, 2)
}

func TestSynthesize_ExplicitSaturatesFully(t *testing.T) {
	w := Weights{Red: 1}

	got := Synthesize(w, Modulation{Popularity: intPtr(100), Explicit: true})

	assert.Equal(t, RGB{R: 229, G: 0, B: 0}, got)
}

func TestSynthesize_PopularityIsClamped(t *testing.T) {
	w := Weights{Purple: 0.5, Yellow: 0.5}

	assert.Equal(t,
		Synthesize(w, Modulation{Popularity: intPtr(100)}),
		Synthesize(w, Modulation{Popularity: intPtr(250)}))
	assert.Equal(t,
		Synthesize(w, Modulation{Popularity: intPtr(0)}),
		Synthesize(w, Modulation{Popularity: intPtr(-40)}))
}

func TestSynthesize_ZeroPopularityIsNotDefault(t *testing.T) {
	w := Weights{Red: 1}

	zero := Synthesize(w, Modulation{Popularity: intPtr(0)})
	unknown := Synthesize(w, Modulation{})

	assert.NotEqual(t, zero, unknown)
	// value 0.5 with saturation 0.6: red 127, others 51
	assertNear(t, RGB{R: 127, G: 51, B: 51}, zero, 1)
}

func TestSynthesize_ZeroWeightsAreExcluded(t *testing.T) {
	only := Synthesize(Weights{Blue: 1}, Modulation{Popularity: intPtr(60)})
	padded := Synthesize(Weights{Blue: 1, Red: 0, Pink: 0}, Modulation{Popularity: intPtr(60)})

	assert.Equal(t, only, padded)
}

func TestSynthesize_ChannelsInRange(t *testing.T) {
	c := DefaultClassifier()
	genreSets := [][]string{
		nil,
		{"rock"},
		{"pop", "rap", "jazz"},
		{"edm", "ambient", "folk", "latin", "metal", "k-pop", "r&b", "classical"},
	}
	popularities := []*int{nil, intPtr(-10), intPtr(0), intPtr(37), intPtr(100), intPtr(1000)}

	for _, genres := range genreSets {
		w := c.Classify(genres)
		for _, p := range popularities {
			for _, explicit := range []bool{false, true} {
				got := Synthesize(w, Modulation{Popularity: p, Explicit: explicit})
				for _, ch := range []int{got.R, got.G, got.B} {
					assert.GreaterOrEqual(t, ch, 0)
					assert.LessOrEqual(t, ch, 255)
				}
			}
		}
	}
}

func TestSynthesize_EmptyWeights(t *testing.T) {
	assert.Equal(t, RGB{}, Synthesize(Weights{}, Modulation{}))
}

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v float64
		want    RGB
	}{
		{"pure red", 0, 1, 1, RGB{255, 0, 0}},
		{"cyan", 0.5, 0.75, 0.7, RGB{44, 178, 178}},
		{"green bucket", 0.33, 0.75, 0.7, RGB{47, 178, 44}},
		{"blue bucket", 0.62, 0.75, 0.7, RGB{44, 82, 178}},
		{"hue wraps", 1.5, 0.75, 0.7, RGB{44, 178, 178}},
		{"negative hue wraps", -0.5, 0.75, 0.7, RGB{44, 178, 178}},
		{"black", 0.3, 1, 0, RGB{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNear(t, tt.want, hsvToRGB(tt.h, tt.s, tt.v), 0)
		})
	}
}
