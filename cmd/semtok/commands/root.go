package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/semtok"
	"github.com/hupe1980/semtok/blobstore"
	"github.com/hupe1980/semtok/encoder"
)

var (
	// Global flags
	endpoint   string
	model      string
	dim        int
	sampleRate int
	layer      int
	storeDir   string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semtok",
	Short: "Semantic audio tokenizer CLI",
	Long: `semtok turns audio into discrete semantic tokens using a pretrained
speech encoder and a k-means codebook.

The encoder is reached over HTTP (an inference server exposing hidden
states); the codebook is fitted offline from embedding corpora and stored
on the local filesystem.

Typical workflow:

  # Extract embeddings from training audio into a corpus file
  semtok embed --out corpus.bin train/*.wav

  # Fit a 1024-entry codebook and store it
  semtok fit --clusters 1024 --seed 42 --name codebook.bin corpus.bin

  # Tokenize audio
  semtok tokenize --name codebook.bin input.wav
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "http://localhost:8080", "encoder inference endpoint")
	rootCmd.PersistentFlags().StringVar(&model, "model", "hubert-base-ls960", "encoder model name")
	rootCmd.PersistentFlags().IntVar(&dim, "dim", 768, "encoder embedding dimension")
	rootCmd.PersistentFlags().IntVar(&sampleRate, "sample-rate", 16000, "encoder sample rate")
	rootCmd.PersistentFlags().IntVar(&layer, "layer", semtok.DefaultLayer, "encoder hidden layer")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", ".", "codebook store directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(infoCmd)
}

func initLogging() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func newEncoder() *encoder.Remote {
	return encoder.NewRemote(endpoint, model, dim, sampleRate, func(o *encoder.RemoteOptions) {
		o.Logger = slog.Default()
	})
}

func newStore() (blobstore.Store, error) {
	return blobstore.NewLocalStore(storeDir)
}

func newLogger() *semtok.Logger {
	return semtok.NewLogger(slog.Default().Handler())
}
