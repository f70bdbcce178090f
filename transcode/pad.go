package transcode

// PadOrTrim returns a waveform of exactly length samples: longer input is
// truncated, shorter input is zero-padded at the end. The input slice is
// never modified.
func PadOrTrim(samples []float64, length int) []float64 {
	if length < 0 {
		length = 0
	}

	out := make([]float64, length)
	copy(out, samples)
	return out
}
