package extractor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

func requireFinite(t *testing.T, features [][]float64) {
	t.Helper()
	for m, row := range features {
		for f, v := range row {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "mel %d frame %d", m, f)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.FeatureSize = 0

	_, err := New(config)
	assert.Error(t, err)
}

func TestExtractShape(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	// One second at 16 kHz with a 160-sample hop gives 101 frames
	features, err := fe.Extract(sineWave(440, 16000, 16000))
	require.NoError(t, err)

	require.Len(t, features, 80)
	for m, row := range features {
		assert.Len(t, row, 101, "mel %d", m)
	}
	requireFinite(t, features)
}

func TestExtractDynamicRange(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	features, err := fe.Extract(sineWave(440, 16000, 16000))
	require.NoError(t, err)

	// After the clamp to 8 orders of magnitude and the /4 rescale, the
	// spread of values can be at most 2
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, row := range features {
		for _, v := range row {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	assert.LessOrEqual(t, maxVal-minVal, 2.0+1e-9)
}

func TestExtractSilence(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	features, err := fe.Extract(make([]float64, 16000))
	require.NoError(t, err)

	requireFinite(t, features)

	// Every bin floors at the same log energy, so the whole matrix is one
	// constant after normalization
	want := features[0][0]
	for m, row := range features {
		for f, v := range row {
			assert.InDelta(t, want, v, 1e-9, "mel %d frame %d", m, f)
		}
	}
}

func TestExtractEmptyWaveform(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	features, err := fe.Extract(nil)
	require.NoError(t, err)

	require.Len(t, features, 80)
	for m, row := range features {
		assert.Empty(t, row, "mel %d", m)
	}
}

func TestExtractDeterministic(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	signal := sineWave(440, 16000, 16000)

	first, err := fe.Extract(signal)
	require.NoError(t, err)

	second, err := fe.Extract(signal)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractPaddedFixedShape(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	// Both short and long input come out at the fixed model shape
	for _, n := range []int{16000, 35 * 16000} {
		features, err := fe.ExtractPadded(sineWave(440, 16000, n))
		require.NoError(t, err)

		require.Len(t, features, 80)
		for m, row := range features {
			require.Len(t, row, 3000, "input %d samples, mel %d", n, m)
		}
		requireFinite(t, features)
	}
}

func TestExtractChunks(t *testing.T) {
	config := DefaultConfig()
	fe, err := New(config)
	require.NoError(t, err)

	// 65 seconds: two full 30-second chunks plus a 5-second remainder
	signal := sineWave(440, 16000, 65*16000)

	chunks, err := fe.ExtractChunks(signal)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	wantFrames := []int{3001, 3001, 501}
	totalFrames := 0
	for i, chunk := range chunks {
		require.Len(t, chunk, 80, "chunk %d", i)
		for m, row := range chunk {
			require.Len(t, row, wantFrames[i], "chunk %d mel %d", i, m)
		}
		requireFinite(t, chunk)
		totalFrames += len(chunk[0])
	}

	// Each chunk gains one centering frame, so the chunked total exceeds a
	// single-pass extraction by at most one frame per chunk
	unchunked, err := fe.Extract(signal)
	require.NoError(t, err)
	assert.LessOrEqual(t, totalFrames-len(unchunked[0]), len(chunks))
}

func TestExtractChunksEmptyWaveform(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	chunks, err := fe.ExtractChunks(nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtractChunksSingleShortChunk(t *testing.T) {
	fe, err := New(DefaultConfig())
	require.NoError(t, err)

	chunks, err := fe.ExtractChunks(sineWave(440, 16000, 16000))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Len(t, chunks[0], 80)
	assert.Len(t, chunks[0][0], 101)
}

func TestPadOrTrimFrames(t *testing.T) {
	features := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}

	padded := PadOrTrimFrames(features, 5)
	require.Len(t, padded, 2)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, padded[0])
	assert.Equal(t, []float64{4, 5, 6, 0, 0}, padded[1])

	trimmed := PadOrTrimFrames(features, 2)
	assert.Equal(t, []float64{1, 2}, trimmed[0])
	assert.Equal(t, []float64{4, 5}, trimmed[1])

	// Input rows are untouched
	assert.Equal(t, []float64{1, 2, 3}, features[0])
}
