// Package extractor turns raw waveforms into the log-mel spectrogram
// matrices a Whisper-family acoustic model consumes.
package extractor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/soundforge/logmel/algorithms/spectral"
	"github.com/soundforge/logmel/algorithms/windowing"
	"github.com/soundforge/logmel/logging"
)

const (
	// logFloor keeps log10 finite on silent bins
	logFloor = 1e-10

	// dynamicRange clamps each chunk to 8 orders of magnitude below its
	// own loudest bin
	dynamicRange = 8.0
)

// FeatureExtractor computes log-mel spectrogram features from mono
// waveforms already at the configured sampling rate.
//
// The extractor is stateless apart from its precomputed window and mel
// filter bank, both built once at construction and immutable afterwards, so
// one instance can be shared across goroutines and reused for any number of
// waveforms. Identical input always produces identical output.
type FeatureExtractor struct {
	config   Config
	window   []float64
	stft     *spectral.STFT
	power    *spectral.PowerSpectrum
	melScale *spectral.MelScale
	filters  [][]float64
	logger   logging.Logger
}

// New creates a feature extractor for the given configuration
func New(config Config) (*FeatureExtractor, error) {
	return NewWithLogger(config, logging.GetGlobalLogger())
}

// NewWithLogger creates a feature extractor with an injected logger
func NewWithLogger(config Config, logger logging.Logger) (*FeatureExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("extractor: invalid configuration: %w", err)
	}

	melScale := spectral.NewMelScale()

	// Built eagerly so the filter bank is immutable before the extractor
	// is ever shared across goroutines
	filters, err := melScale.CreateFilterBank(config.FeatureSize, config.NFFT, config.SamplingRate)
	if err != nil {
		return nil, fmt.Errorf("extractor: build mel filter bank: %w", err)
	}

	componentLogger := logger.WithFields(logging.Fields{
		"component": "feature_extractor",
	})

	return &FeatureExtractor{
		config:   config,
		window:   windowing.NewPeriodicHann(config.NFFT).GetCoefficients(),
		stft:     spectral.NewSTFTWithLogger(componentLogger),
		power:    spectral.NewPowerSpectrum(),
		melScale: melScale,
		filters:  filters,
		logger:   componentLogger,
	}, nil
}

// Config returns the extractor configuration
func (fe *FeatureExtractor) Config() Config {
	return fe.config
}

// Extract processes the entire waveform as a single segment and returns a
// [FeatureSize][timeFrames] matrix. A waveform of L samples with hop H
// yields floor(L/H)+1 frames; an empty waveform yields a matrix with
// FeatureSize rows and zero frames, never an error.
func (fe *FeatureExtractor) Extract(samples []float64) ([][]float64, error) {
	return fe.extractSegment(samples)
}

// ExtractPadded pads or trims the waveform to exactly one chunk and the
// resulting matrix to the fixed model frame count (MaxFrames, 3000 for the
// default configuration). This is the shape a pretrained acoustic model
// expects for its nominal 30-second input.
func (fe *FeatureExtractor) ExtractPadded(samples []float64) ([][]float64, error) {
	chunk := samples
	want := fe.config.SamplesPerChunk()
	if len(chunk) != want {
		padded := make([]float64, want)
		copy(padded, chunk)
		chunk = padded
	}

	features, err := fe.extractSegment(chunk)
	if err != nil {
		return nil, err
	}

	return PadOrTrimFrames(features, fe.config.MaxFrames()), nil
}

// ExtractChunks splits the waveform into non-overlapping ChunkLength-second
// segments and extracts each one independently, returning one feature
// matrix per chunk. The final chunk may be shorter.
//
// Each chunk gets its own centering padding and its own dynamic-range
// clamp, computed from that chunk's loudest bin. Clamps are deliberately
// not shared across chunks: that is the behavior of the chunk-at-a-time
// preprocessing the pretrained models were trained against, even though it
// makes loudness normalization chunk-local.
func (fe *FeatureExtractor) ExtractChunks(samples []float64) ([][][]float64, error) {
	if len(samples) == 0 {
		return [][][]float64{}, nil
	}

	chunkSamples := fe.config.SamplesPerChunk()
	numChunks := (len(samples) + chunkSamples - 1) / chunkSamples

	features := make([][][]float64, 0, numChunks)
	for start := 0; start < len(samples); start += chunkSamples {
		end := min(start+chunkSamples, len(samples))

		chunk, err := fe.extractSegment(samples[start:end])
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(features), err)
		}

		features = append(features, chunk)
	}

	fe.logger.Debug("extracted chunked features", logging.Fields{
		"chunks":        len(features),
		"chunk_seconds": fe.config.ChunkLength,
		"samples":       len(samples),
	})

	return features, nil
}

// extractSegment runs the full pipeline on one segment:
// STFT -> power spectrum -> mel projection -> log10 with floor ->
// dynamic-range clamp -> affine normalization to roughly [-1, 1.5].
func (fe *FeatureExtractor) extractSegment(segment []float64) ([][]float64, error) {
	if len(segment) == 0 {
		empty := make([][]float64, fe.config.FeatureSize)
		for m := range empty {
			empty[m] = []float64{}
		}
		return empty, nil
	}

	stftResult, err := fe.stft.Compute(segment, fe.config.NFFT, fe.config.HopLength, fe.config.NFFT, fe.window)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	powerFrames := fe.power.FramesFromSTFT(stftResult)

	logSpec := make([][]float64, fe.config.FeatureSize)
	for m := range logSpec {
		logSpec[m] = make([]float64, stftResult.TimeFrames)
	}

	for t, frame := range powerFrames {
		melEnergies := fe.melScale.Project(fe.filters, frame)
		for m, v := range melEnergies {
			logSpec[m][t] = math.Log10(math.Max(v, logFloor))
		}
	}

	// Clamp against the loudest bin of this segment, then rescale
	maxVal := math.Inf(-1)
	for m := range logSpec {
		maxVal = math.Max(maxVal, floats.Max(logSpec[m]))
	}

	clampFloor := maxVal - dynamicRange
	for m := range logSpec {
		for t, v := range logSpec[m] {
			logSpec[m][t] = (math.Max(v, clampFloor) + 4.0) / 4.0
		}
	}

	return logSpec, nil
}

// PadOrTrimFrames returns a feature matrix with exactly frames columns:
// longer rows are truncated, shorter rows zero-padded. Row count is
// preserved and the input is not modified.
func PadOrTrimFrames(features [][]float64, frames int) [][]float64 {
	if frames < 0 {
		frames = 0
	}

	out := make([][]float64, len(features))
	for m, row := range features {
		out[m] = make([]float64, frames)
		copy(out[m], row)
	}
	return out
}
