package spectral

import (
	"fmt"

	"github.com/soundforge/logmel/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fourier *Fourier
	logger  logging.Logger
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Spectrum   [][]complex128 // [frequency bin][time frame], non-negative bins only
	FreqBins   int            // Number of frequency bins (nFFT/2 + 1)
	TimeFrames int            // Number of time frames
	NFFT       int            // Transform size
	HopLength  int            // Stride between frames in samples
	WinLength  int            // Window length in samples
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return NewSTFTWithLogger(logging.GetGlobalLogger())
}

// NewSTFTWithLogger creates a new STFT calculator with an injected logger
func NewSTFTWithLogger(logger logging.Logger) *STFT {
	return &STFT{
		fourier: NewFourier(),
		logger: logger.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// Compute slides a windowed transform over the signal and returns the
// complex time-frequency matrix, keeping only the non-negative frequency
// bins of each frame.
//
// The signal is treated as centered: frame t is centered on sample
// t*hopLength, with nFFT/2 samples of reflect padding on both ends. This
// matches the center=true convention of common audio pipelines and yields
// exactly floor(len(signal)/hopLength)+1 frames. Frames that reach beyond
// the padded extent are zero-filled rather than rejected.
//
// winLength may be shorter than nFFT, in which case the windowed segment is
// centered inside the transform frame and zero-padded on both sides.
func (s *STFT) Compute(signal []float64, nFFT, hopLength, winLength int, window []float64) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if nFFT <= 0 {
		return nil, fmt.Errorf("nFFT must be positive, got %d", nFFT)
	}

	if hopLength <= 0 {
		return nil, fmt.Errorf("hop length must be positive, got %d", hopLength)
	}

	if winLength <= 0 || winLength > nFFT {
		return nil, fmt.Errorf("window length must be in (0, %d], got %d", nFFT, winLength)
	}

	if len(window) != winLength {
		return nil, fmt.Errorf("window has %d coefficients, expected %d", len(window), winLength)
	}

	pad := nFFT / 2
	numFrames := len(signal)/hopLength + 1
	freqBins := nFFT/2 + 1

	// Short windows sit centered inside the transform frame
	offset := (nFFT - winLength) / 2

	spectrum := make([][]complex128, freqBins)
	for i := range spectrum {
		spectrum[i] = make([]complex128, numFrames)
	}

	frame := make([]float64, nFFT)

	for t := range numFrames {
		for i := range frame {
			frame[i] = 0
		}

		base := t*hopLength - pad + offset
		for j := range winLength {
			frame[offset+j] = window[j] * sampleAt(signal, base+j, pad)
		}

		bins, err := s.fourier.ForwardReal(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", t, err)
		}

		for i := range freqBins {
			spectrum[i][t] = bins[i]
		}
	}

	s.logger.Debug("computed STFT", logging.Fields{
		"frames":     numFrames,
		"freq_bins":  freqBins,
		"nfft":       nFFT,
		"hop_length": hopLength,
	})

	return &STFTResult{
		Spectrum:   spectrum,
		FreqBins:   freqBins,
		TimeFrames: numFrames,
		NFFT:       nFFT,
		HopLength:  hopLength,
		WinLength:  winLength,
	}, nil
}

// sampleAt reads the signal at index idx, where idx may run into the
// padded margins. Inside the padded extent the signal is reflected about
// its endpoints; beyond it the sample is zero.
func sampleAt(signal []float64, idx, pad int) float64 {
	n := len(signal)
	if idx >= 0 && idx < n {
		return signal[idx]
	}

	if idx < -pad || idx >= n+pad {
		return 0
	}

	return signal[reflectIndex(idx, n)]
}

// reflectIndex mirrors idx into [0, n) without repeating the edge samples
func reflectIndex(idx, n int) int {
	if n == 1 {
		return 0
	}

	period := 2 * (n - 1)
	idx %= period
	if idx < 0 {
		idx += period
	}
	if idx >= n {
		idx = period - idx
	}
	return idx
}
