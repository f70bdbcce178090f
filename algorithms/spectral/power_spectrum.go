package spectral

// PowerSpectrum provides power spectral density computation
type PowerSpectrum struct {
	// No state needed - stateless calculation
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// FromSpectrum computes the squared magnitude of one complex spectrum frame
func (ps *PowerSpectrum) FromSpectrum(spectrum []complex128) []float64 {
	power := make([]float64, len(spectrum))
	for i, v := range spectrum {
		re := real(v)
		im := imag(v)
		power[i] = re*re + im*im
	}
	return power
}

// FramesFromSTFT computes the power spectrum of every STFT frame.
// The result is time-major, [time frame][frequency bin], so a frame can be
// projected through a filter bank with a plain dot product.
func (ps *PowerSpectrum) FramesFromSTFT(result *STFTResult) [][]float64 {
	if result == nil || result.TimeFrames == 0 {
		return [][]float64{}
	}

	power := make([][]float64, result.TimeFrames)
	for t := range power {
		power[t] = make([]float64, result.FreqBins)
		for f := range result.FreqBins {
			v := result.Spectrum[f][t]
			re := real(v)
			im := imag(v)
			power[t][f] = re*re + im*im
		}
	}

	return power
}
