package extractor

import "fmt"

// Config holds feature extraction parameters. The zero value is not usable;
// start from DefaultConfig or fill every field, then Validate.
type Config struct {
	// Spectral analysis
	FeatureSize  int `json:"feature_size"`  // Number of mel bins
	SamplingRate int `json:"sampling_rate"` // Expected waveform rate in Hz
	HopLength    int `json:"hop_length"`    // Stride between frames in samples
	NFFT         int `json:"n_fft"`         // Transform size in samples

	// Chunking
	ChunkLength int `json:"chunk_length"` // Segment length in seconds for chunked extraction
}

// DefaultConfig returns the canonical Whisper-family configuration:
// 80 mel bins at 16 kHz with a 10 ms hop, a 400-sample transform window and
// 30-second chunks.
func DefaultConfig() Config {
	return Config{
		FeatureSize:  80,
		SamplingRate: 16000,
		HopLength:    160,
		NFFT:         400,
		ChunkLength:  30,
	}
}

// Validate rejects non-positive parameters. Invalid configuration fails
// fast at construction; nothing is silently clamped.
func (c Config) Validate() error {
	if c.FeatureSize <= 0 {
		return fmt.Errorf("feature size must be positive, got %d", c.FeatureSize)
	}

	if c.SamplingRate <= 0 {
		return fmt.Errorf("sampling rate must be positive, got %d", c.SamplingRate)
	}

	if c.HopLength <= 0 {
		return fmt.Errorf("hop length must be positive, got %d", c.HopLength)
	}

	if c.NFFT < 2 {
		return fmt.Errorf("nFFT must be at least 2, got %d", c.NFFT)
	}

	if c.ChunkLength <= 0 {
		return fmt.Errorf("chunk length must be positive, got %d", c.ChunkLength)
	}

	return nil
}

// SamplesPerChunk returns the number of waveform samples in one chunk
func (c Config) SamplesPerChunk() int {
	return c.ChunkLength * c.SamplingRate
}

// TimePerFrame returns the duration of one feature frame in seconds
func (c Config) TimePerFrame() float64 {
	return float64(c.HopLength) / float64(c.SamplingRate)
}

// MaxFrames returns the fixed frame count of one chunk-length model input
// (3000 for the default configuration)
func (c Config) MaxFrames() int {
	return c.SamplesPerChunk() / c.HopLength
}
