package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/semtok"
	"github.com/hupe1980/semtok/codebook"
	"github.com/hupe1980/semtok/waveform"
)

var (
	tokenizeName     string
	tokenizeJSON     bool
	tokenizeCoverage bool
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <audio.wav>...",
	Short: "Turn audio files into discrete token sequences",
	Long: `Tokenize WAV files against the stored codebook and print one token id
sequence per file.

Examples:
  semtok tokenize --name codebook.bin input.wav
  semtok tokenize --name codebook.bin --json input.wav | jq .
  semtok tokenize --name codebook.bin --coverage batch/*.wav`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := newStore()
		if err != nil {
			return err
		}

		tok, err := semtok.Load(ctx, newEncoder(), store, tokenizeName,
			semtok.WithLayer(layer),
			semtok.WithLogger(newLogger()),
		)
		if err != nil {
			return err
		}
		if !tok.HasCodebook() {
			return fmt.Errorf("codebook %q not found in store, run 'semtok fit' first", tokenizeName)
		}

		var usage *codebook.Usage
		if tokenizeCoverage {
			usage = codebook.NewUsage(tok.Codebook().Clusters())
		}

		enc := json.NewEncoder(os.Stdout)

		for _, path := range args {
			ids, err := tokenizeFile(cmd, tok, path)
			if err != nil {
				return err
			}

			if usage != nil {
				usage.Observe(ids)
			}

			if tokenizeJSON {
				if err := enc.Encode(map[string]any{"file": path, "tokens": ids}); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s: %v\n", path, ids)
			}
		}

		if usage != nil {
			fmt.Fprintf(os.Stderr, "coverage: %d/%d centroids (%.1f%%) over %d tokens\n",
				usage.Distinct(), tok.Codebook().Clusters(), usage.Coverage()*100, usage.Total())
		}

		return nil
	},
}

func init() {
	tokenizeCmd.Flags().StringVar(&tokenizeName, "name", "codebook.bin", "stored codebook name")
	tokenizeCmd.Flags().BoolVar(&tokenizeJSON, "json", false, "output as JSON lines (for piping)")
	tokenizeCmd.Flags().BoolVar(&tokenizeCoverage, "coverage", false, "report codebook coverage over all inputs")
}

func tokenizeFile(cmd *cobra.Command, tok *semtok.Tokenizer, path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	batch, err := waveform.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	tokens, err := tok.Tokenize(cmd.Context(), batch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tokens.IDs()[0], nil
}
