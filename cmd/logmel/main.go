// Command logmel is a diagnostic tool for the feature extraction pipeline:
// it decodes a WAV file, resamples it, extracts log-mel features and prints
// shape and value statistics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/soundforge/logmel/extractor"
	"github.com/soundforge/logmel/logging"
	"github.com/soundforge/logmel/transcode"
)

var (
	flagMels    int
	flagRate    int
	flagHop     int
	flagNFFT    int
	flagChunk   int
	flagChunked bool
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logmel <file.wav>",
		Short: "Extract log-mel spectrogram features from a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().IntVar(&flagMels, "mels", 80, "number of mel bins")
	rootCmd.Flags().IntVar(&flagRate, "rate", 16000, "target sample rate in Hz")
	rootCmd.Flags().IntVar(&flagHop, "hop", 160, "hop length in samples")
	rootCmd.Flags().IntVar(&flagNFFT, "nfft", 400, "transform size in samples")
	rootCmd.Flags().IntVar(&flagChunk, "chunk", 30, "chunk length in seconds")
	rootCmd.Flags().BoolVar(&flagChunked, "chunked", false, "extract per-chunk matrices instead of one matrix")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string) error {
	if flagVerbose {
		logging.SetLevel(logging.DebugLevel)
	}

	audio, err := transcode.NewDecoder().DecodeFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("input: %d Hz, %d channel(s), %d samples (%s)\n",
		audio.SampleRate, audio.Channels, len(audio.PCM), audio.Duration)

	audio, err = transcode.Resample(audio, flagRate)
	if err != nil {
		return err
	}

	config := extractor.Config{
		FeatureSize:  flagMels,
		SamplingRate: flagRate,
		HopLength:    flagHop,
		NFFT:         flagNFFT,
		ChunkLength:  flagChunk,
	}

	fe, err := extractor.New(config)
	if err != nil {
		return err
	}

	if flagChunked {
		chunks, err := fe.ExtractChunks(audio.PCM)
		if err != nil {
			return err
		}

		fmt.Printf("chunks: %d (chunk length %ds)\n", len(chunks), flagChunk)
		for i, features := range chunks {
			printStats(fmt.Sprintf("chunk %d", i), features)
		}
		return nil
	}

	features, err := fe.Extract(audio.PCM)
	if err != nil {
		return err
	}

	printStats("features", features)
	return nil
}

func printStats(label string, features [][]float64) {
	rows := len(features)
	cols := 0
	if rows > 0 {
		cols = len(features[0])
	}

	fmt.Printf("%s: shape [%d][%d]\n", label, rows, cols)
	if rows == 0 || cols == 0 {
		return
	}

	flat := make([]float64, 0, rows*cols)
	for _, row := range features {
		flat = append(flat, row...)
	}

	fmt.Printf("  min %.4f  max %.4f  mean %.4f  stddev %.4f\n",
		floats.Min(flat), floats.Max(flat), stat.Mean(flat, nil), stat.StdDev(flat, nil))
}
