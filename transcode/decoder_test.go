package transcode

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes 16-bit PCM samples to a temp WAV file and returns its path
func writeWAV(t *testing.T, name string, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return path
}

func TestDecodeFileMono(t *testing.T) {
	data := make([]int, 1600)
	for i := range data {
		data[i] = int(16384 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	path := writeWAV(t, "mono.wav", 16000, 1, data)

	got, err := NewDecoder().DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.Len(t, got.PCM, 1600)

	// 16-bit PCM decodes exactly: each sample is the encoded integer / 32768
	for i, s := range got.PCM {
		require.InDelta(t, float64(data[i])*pcm16Scale, s, 1e-12, "sample %d", i)
		require.LessOrEqual(t, math.Abs(s), 1.0, "sample %d", i)
	}
}

func TestDecodeFileStereoDownmix(t *testing.T) {
	// Constant L=8192, R=16384 interleaved; the mono mix is their average
	data := make([]int, 200)
	for i := 0; i < len(data); i += 2 {
		data[i] = 8192
		data[i+1] = 16384
	}
	path := writeWAV(t, "stereo.wav", 16000, 2, data)

	got, err := NewDecoder().DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Channels)
	require.Len(t, got.PCM, 100)
	for i, s := range got.PCM {
		assert.InDelta(t, 12288.0/32768.0, s, 1e-9, "sample %d", i)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.wav")

	_, err := NewDecoder().DecodeFile(path)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, path, decodeErr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestDecodeFileNotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	require.NoError(t, os.WriteFile(path, []byte("this is not audio"), 0o644))

	_, err := NewDecoder().DecodeFile(path)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestDecodeFileRejectsOtherBitDepths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 16000, 24, 1, 1)
	buf := &audio.IntBuffer{
		Data:           make([]int, 100),
		Format:         &audio.Format{NumChannels: 1, SampleRate: 16000},
		SourceBitDepth: 24,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	_, err = NewDecoder().DecodeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bit depth")
}
