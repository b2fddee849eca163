package color

// Tempo bounds in BPM.
const (
	MinTempo = 60.0
	MaxTempo = 180.0
)

// ColorizeTempo maps tempo to a red/blue balance and energy to green.
// Faster tracks are warmer.
func ColorizeTempo(tempo, energy float64) RGB {
	tempo = max(MinTempo, min(MaxTempo, tempo))
	p := (tempo - MinTempo) / (MaxTempo - MinTempo)

	return RGB{
		R: clamp(255 * p),
		G: clamp(255 * energy),
		B: clamp(255 * (1 - p)),
	}
}
