package transcode

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/soundforge/logmel/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // Channel count of the source file
	Duration   time.Duration `json:"duration"`
}

// DecodeError reports a file that could not be decoded, carrying the
// offending path so callers can say exactly which input failed
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("transcode: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// pcm16Scale converts 16-bit integer PCM to [-1, 1] floats
const pcm16Scale = 1.0 / 32768.0

// Decoder decodes 16-bit PCM WAV files into mono float waveforms.
// Stereo input is downmixed by averaging channels. Compressed codecs and
// other bit depths are rejected rather than approximated.
type Decoder struct {
	logger logging.Logger
}

// NewDecoder creates a new WAV decoder
func NewDecoder() *Decoder {
	return NewDecoderWithLogger(logging.GetGlobalLogger())
}

// NewDecoderWithLogger creates a new WAV decoder with an injected logger
func NewDecoderWithLogger(logger logging.Logger) *Decoder {
	return &Decoder{
		logger: logger.WithFields(logging.Fields{
			"component": "wav_decoder",
		}),
	}
}

// DecodeFile reads a 16-bit PCM WAV file and returns its samples as a mono
// waveform normalized to [-1, 1]. Every failure mode surfaces as a
// *DecodeError naming the file.
func (d *Decoder) DecodeFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("not a valid WAV file")}
	}

	if decoder.WavAudioFormat != 1 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported WAV audio format %d (only PCM is supported)", decoder.WavAudioFormat)}
	}

	if decoder.BitDepth != 16 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported bit depth %d (only 16-bit PCM is supported)", decoder.BitDepth)}
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("invalid channel count %d", channels)}
	}

	sampleRate := buf.Format.SampleRate
	numFrames := len(buf.Data) / channels

	// Downmix interleaved channels to mono while converting to float
	pcm := make([]float64, numFrames)
	for i := range numFrames {
		sum := 0.0
		for c := range channels {
			sum += float64(buf.Data[i*channels+c])
		}
		pcm[i] = sum / float64(channels) * pcm16Scale
	}

	duration := time.Duration(0)
	if sampleRate > 0 {
		duration = time.Duration(float64(numFrames) / float64(sampleRate) * float64(time.Second))
	}

	d.logger.Debug("decoded WAV file", logging.Fields{
		"path":        path,
		"sample_rate": sampleRate,
		"channels":    channels,
		"samples":     numFrames,
		"duration":    duration.String(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   duration,
	}, nil
}
