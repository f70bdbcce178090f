package transcode

import (
	"fmt"
	"time"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/soundforge/logmel/logging"
)

// Resampler converts waveforms between sample rates
type Resampler struct {
	logger logging.Logger
}

// NewResampler creates a new resampler
func NewResampler() *Resampler {
	return NewResamplerWithLogger(logging.GetGlobalLogger())
}

// NewResamplerWithLogger creates a new resampler with an injected logger
func NewResamplerWithLogger(logger logging.Logger) *Resampler {
	return &Resampler{
		logger: logger.WithFields(logging.Fields{
			"component": "resampler",
		}),
	}
}

// Resample converts the waveform to targetRate using the default logger.
// See Resampler.Resample.
func Resample(data *AudioData, targetRate int) (*AudioData, error) {
	return NewResampler().Resample(data, targetRate)
}

// Resample converts the waveform to targetRate. Audio already at the target
// rate is returned unchanged, so callers can resample unconditionally.
func (rs *Resampler) Resample(data *AudioData, targetRate int) (*AudioData, error) {
	if data == nil {
		return nil, fmt.Errorf("transcode: nil audio data")
	}

	if targetRate <= 0 {
		return nil, fmt.Errorf("transcode: target rate must be positive, got %d", targetRate)
	}

	if data.SampleRate == targetRate {
		return data, nil
	}

	if data.SampleRate <= 0 {
		return nil, fmt.Errorf("transcode: source rate must be positive, got %d", data.SampleRate)
	}

	r, err := resampler.NewSimple(float64(data.SampleRate), float64(targetRate))
	if err != nil {
		return nil, fmt.Errorf("transcode: create resampler: %w", err)
	}

	out, err := r.Process(data.PCM)
	if err != nil {
		return nil, fmt.Errorf("transcode: resample %d -> %d Hz: %w", data.SampleRate, targetRate, err)
	}

	// The filter holds back a few samples of tail; drain them
	tail, err := r.Flush()
	if err != nil {
		return nil, fmt.Errorf("transcode: flush resampler: %w", err)
	}
	out = append(out, tail...)

	rs.logger.Debug("resampled audio", logging.Fields{
		"source_rate": data.SampleRate,
		"target_rate": targetRate,
		"in_samples":  len(data.PCM),
		"out_samples": len(out),
	})

	return &AudioData{
		PCM:        out,
		SampleRate: targetRate,
		Channels:   data.Channels,
		Duration:   time.Duration(float64(len(out)) / float64(targetRate) * float64(time.Second)),
	}, nil
}
