// Package color derives a single LED color from track metadata.
package color

import "math"

// Bucket names.
const (
	Red    = "RED"
	Orange = "ORANGE"
	Yellow = "YELLOW"
	Green  = "GREEN"
	Cyan   = "CYAN"
	Blue   = "BLUE"
	Purple = "PURPLE"
	Pink   = "PINK"
)

// Bucket is a named hue anchor on the color wheel.
type Bucket struct {
	Name string
	Hue  float64 // [0,1)
}

// Buckets is the fixed hue table. Order matters: it is the mixing order.
var Buckets = [...]Bucket{
	{Name: Red, Hue: 0.00},
	{Name: Orange, Hue: 0.08},
	{Name: Yellow, Hue: 0.14},
	{Name: Green, Hue: 0.33},
	{Name: Cyan, Hue: 0.50},
	{Name: Blue, Hue: 0.62},
	{Name: Purple, Hue: 0.78},
	{Name: Pink, Hue: 0.90},
}

// RGB is an 8-bit color as sent to the device.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// isBucket reports whether name is one of the fixed bucket names.
func isBucket(name string) bool {
	for _, b := range Buckets {
		if b.Name == name {
			return true
		}
	}
	return false
}

// clamp truncates x toward zero and bounds it to [0,255].
func clamp(x float64) int {
	v := int(x)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
