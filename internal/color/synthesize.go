package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPopularity is assumed when the track carries no popularity.
// A reported popularity of 0 is kept as 0, not replaced by the default.
const DefaultPopularity = 50

// Modulation carries the track facts that shift saturation and brightness.
type Modulation struct {
	Popularity *int // nil means unknown
	Explicit   bool
}

// Synthesize mixes the bucket hues by weight into one color.
//
// Each bucket is converted to RGB on its own and the channels are averaged.
// Hues are never averaged directly.
func Synthesize(w Weights, m Modulation) RGB {
	popularity := DefaultPopularity
	if m.Popularity != nil {
		popularity = min(max(*m.Popularity, 0), 100)
	}
	pop := clamp01(float64(popularity) / 100)

	explicitBoost := 0.0
	if m.Explicit {
		explicitBoost = 0.1
	}
	saturation := clamp01(0.6 + 0.3*pop + explicitBoost)
	brightness := clamp01(0.5 + 0.4*pop)

	var r, g, b, total float64
	for _, bucket := range Buckets {
		weight := w[bucket.Name]
		if weight <= 0 {
			continue
		}
		c := hsvToRGB(bucket.Hue, saturation, brightness)
		r += float64(c.R) * weight
		g += float64(c.G) * weight
		b += float64(c.B) * weight
		total += weight
	}
	if total == 0 {
		return RGB{}
	}

	return RGB{R: clamp(r / total), G: clamp(g / total), B: clamp(b / total)}
}

// hsvToRGB converts a hue in turns with saturation and value in [0,1] to 8-bit
// channels, truncating toward zero.
func hsvToRGB(h, s, v float64) RGB {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	c := colorful.Hsv(h*360, clamp01(s), clamp01(v))
	return RGB{R: clamp(c.R * 255), G: clamp(c.G * 255), B: clamp(c.B * 255)}
}
