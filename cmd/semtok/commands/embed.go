package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/semtok"
	"github.com/hupe1980/semtok/codebook"
	"github.com/hupe1980/semtok/waveform"
)

var (
	embedOut     string
	embedWorkers int
)

var embedCmd = &cobra.Command{
	Use:   "embed [flags] <audio.wav>...",
	Short: "Extract embedding frames from audio files into a corpus file",
	Long: `Extract embedding frames from WAV files and write them into a single
corpus file for codebook fitting.

Examples:
  semtok embed --out corpus.bin train/*.wav
  semtok embed --out corpus.bin --workers 8 train/*.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tok, err := semtok.New(newEncoder(),
			semtok.WithLayer(layer),
			semtok.WithLogger(newLogger()),
		)
		if err != nil {
			return err
		}

		corpus, err := codebook.CollectCorpus(ctx, args, func(ctx context.Context, path string) ([][]float32, error) {
			return embedFile(ctx, tok, path)
		}, embedWorkers)
		if err != nil {
			return err
		}

		out, err := os.Create(embedOut)
		if err != nil {
			return err
		}
		defer out.Close()

		if err := codebook.WriteCorpus(out, corpus); err != nil {
			return err
		}

		fmt.Printf("wrote %d frames from %d file(s) to %s\n", len(corpus), len(args), embedOut)

		return nil
	},
}

func init() {
	embedCmd.Flags().StringVar(&embedOut, "out", "", "output corpus file (required)")
	embedCmd.Flags().IntVar(&embedWorkers, "workers", 0, "parallel encode workers (default: GOMAXPROCS)")

	_ = embedCmd.MarkFlagRequired("out")
}

// embedFile extracts the embedding frames of one WAV file.
func embedFile(ctx context.Context, tok *semtok.Tokenizer, path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	batch, err := waveform.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	frames, err := tok.Embed(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return frames[0], nil
}
