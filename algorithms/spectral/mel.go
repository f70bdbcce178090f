package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Slaney mel scale constants: linear below the break frequency,
// logarithmic above it
const (
	melBreakHz   = 1000.0
	melLinearHz  = 200.0 / 3.0 // Hz per mel in the linear region
	melBreakMel  = melBreakHz / melLinearHz
	melLogFactor = 27.0 // mels spanning one factor of 6.4 above the break
)

// MelScale provides Slaney-style mel frequency conversion and filter bank
// construction. This is the variant used by Slaney's Auditory Toolbox and
// librosa's default, distinct from the HTK formula.
type MelScale struct {
	// No state needed - pure conversions
}

// NewMelScale creates a new mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// HzToMel converts frequency in Hz to the Slaney mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	if hz < melBreakHz {
		return hz / melLinearHz
	}
	return melBreakMel + math.Log(hz/melBreakHz)*melLogFactor/math.Log(6.4)
}

// MelToHz converts Slaney mels back to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	if mel < melBreakMel {
		return mel * melLinearHz
	}
	return melBreakHz * math.Exp(math.Log(6.4)*(mel-melBreakMel)/melLogFactor)
}

// CreateFilterBank constructs the [nMels][nFFT/2+1] triangular filter matrix
// projecting linear frequency bins onto the mel scale, covering
// [0, sampleRate/2].
//
// Filters are area-normalized (Slaney style): each triangle is scaled by
// 2/(upper-lower) so every filter contributes equal energy for equal
// perceptual bandwidth, rather than equal peak height. The construction is a
// pure function of its three parameters and is safe to memoize by that
// triple.
func (ms *MelScale) CreateFilterBank(nMels, nFFT, sampleRate int) ([][]float64, error) {
	if nMels <= 0 {
		return nil, fmt.Errorf("nMels must be positive, got %d", nMels)
	}

	if nFFT < 2 {
		return nil, fmt.Errorf("nFFT must be at least 2, got %d", nFFT)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	nBins := nFFT/2 + 1

	// Center frequency of each transform bin
	binFreqs := make([]float64, nBins)
	for k := range binFreqs {
		binFreqs[k] = float64(k) * float64(sampleRate) / float64(nFFT)
	}

	// nMels+2 band edges equally spaced in mels across [0, Nyquist]
	maxMel := ms.HzToMel(float64(sampleRate) / 2.0)
	edges := make([]float64, nMels+2)
	for i := range edges {
		edges[i] = ms.MelToHz(maxMel * float64(i) / float64(nMels+1))
	}

	filterBank := make([][]float64, nMels)
	for m := range filterBank {
		filterBank[m] = make([]float64, nBins)

		lower := edges[m]
		center := edges[m+1]
		upper := edges[m+2]

		for k, f := range binFreqs {
			rising := (f - lower) / (center - lower)
			falling := (upper - f) / (upper - center)

			weight := math.Min(rising, falling)
			if weight < 0 {
				weight = 0
			}

			filterBank[m][k] = weight
		}

		// Area normalization
		enorm := 2.0 / (upper - lower)
		floats.Scale(enorm, filterBank[m])
	}

	return filterBank, nil
}

// Project applies the filter bank to a single power spectrum frame,
// producing one mel energy per filter
func (ms *MelScale) Project(filterBank [][]float64, powerFrame []float64) []float64 {
	melEnergies := make([]float64, len(filterBank))
	for m, filter := range filterBank {
		melEnergies[m] = floats.Dot(filter, powerFrame)
	}
	return melEnergies
}
