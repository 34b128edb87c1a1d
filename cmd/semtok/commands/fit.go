package commands

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/hupe1980/semtok/codebook"
)

var (
	fitName       string
	fitSeed       int64
	fitConfigFile string

	fitClusters     int
	fitInit         string
	fitMaxIter      int
	fitBatchSize    int
	fitTol          float64
	fitNInit        int
	fitNoImprove    int
	fitReassignment float64
)

// fitConfig mirrors the trainer hyperparameters for YAML config files.
type fitConfig struct {
	Clusters          int     `yaml:"clusters"`
	Init              string  `yaml:"init"`
	MaxIter           int     `yaml:"max_iter"`
	BatchSize         int     `yaml:"batch_size"`
	Tol               float64 `yaml:"tol"`
	NInit             int     `yaml:"n_init"`
	MaxNoImprovement  int     `yaml:"max_no_improvement"`
	ReassignmentRatio float64 `yaml:"reassignment_ratio"`
}

var fitCmd = &cobra.Command{
	Use:   "fit [flags] <corpus.bin>...",
	Short: "Fit a codebook to a corpus and store it",
	Long: `Fit a k-means codebook to one or more corpus files and store the
result in the codebook store.

Hyperparameters can be given as flags or in a YAML config file
(flags win over the file):

  clusters: 1024
  init: k-means++
  max_iter: 100
  batch_size: 10000
  n_init: 20

Examples:
  semtok fit --name codebook.bin --seed 42 corpus.bin
  semtok fit --name codebook.bin -f fit.yaml corpus.bin morecorpus.bin`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		opts, err := trainerOptions(cmd)
		if err != nil {
			return err
		}

		var corpus [][]float32
		for _, path := range args {
			vectors, err := readCorpusFile(path)
			if err != nil {
				return err
			}
			corpus = append(corpus, vectors...)
		}

		store, err := newStore()
		if err != nil {
			return err
		}

		result, err := codebook.Learn(ctx, corpus, fitSeed, store, fitName, func(o *codebook.LearnOptions) {
			o.Trainer = opts
			o.Logger = newLogger().Logger
		})
		if err != nil {
			return err
		}

		fmt.Printf("fitted %d clusters over %d frames: inertia %.6f after %d steps (converged: %t)\n",
			result.Codebook.Clusters(), len(corpus), result.Inertia, result.Steps, result.Converged)

		return nil
	},
}

func init() {
	defaults := codebook.DefaultTrainerOptions()

	fitCmd.Flags().StringVar(&fitName, "name", "codebook.bin", "stored codebook name")
	fitCmd.Flags().Int64Var(&fitSeed, "seed", 0, "random seed (same corpus and seed reproduce the artifact)")
	fitCmd.Flags().StringVarP(&fitConfigFile, "file", "f", "", "hyperparameter config file (YAML)")

	fitCmd.Flags().IntVar(&fitClusters, "clusters", defaults.Clusters, "number of clusters")
	fitCmd.Flags().StringVar(&fitInit, "init", string(defaults.Init), "init strategy (k-means++ or random)")
	fitCmd.Flags().IntVar(&fitMaxIter, "max-iter", defaults.MaxIter, "maximum passes over the corpus")
	fitCmd.Flags().IntVar(&fitBatchSize, "batch-size", defaults.BatchSize, "mini-batch size")
	fitCmd.Flags().Float64Var(&fitTol, "tol", defaults.Tol, "relative centroid-shift tolerance (0 disables)")
	fitCmd.Flags().IntVar(&fitNInit, "n-init", defaults.NInit, "number of candidate seedings")
	fitCmd.Flags().IntVar(&fitNoImprove, "max-no-improvement", defaults.MaxNoImprovement, "early-stop patience in batches (0 disables)")
	fitCmd.Flags().Float64Var(&fitReassignment, "reassignment-ratio", defaults.ReassignmentRatio, "starved-centroid reassignment ratio (0 disables)")
}

// trainerOptions merges the YAML config file (if any) with flag overrides.
func trainerOptions(cmd *cobra.Command) (codebook.TrainerOptions, error) {
	opts := codebook.DefaultTrainerOptions()

	if fitConfigFile != "" {
		data, err := os.ReadFile(fitConfigFile)
		if err != nil {
			return opts, fmt.Errorf("read config %s: %w", fitConfigFile, err)
		}

		cfg := fitConfig{
			Clusters:          opts.Clusters,
			Init:              string(opts.Init),
			MaxIter:           opts.MaxIter,
			BatchSize:         opts.BatchSize,
			Tol:               opts.Tol,
			NInit:             opts.NInit,
			MaxNoImprovement:  opts.MaxNoImprovement,
			ReassignmentRatio: opts.ReassignmentRatio,
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return opts, fmt.Errorf("parse config %s: %w", fitConfigFile, err)
		}

		opts.Clusters = cfg.Clusters
		opts.Init = codebook.InitStrategy(cfg.Init)
		opts.MaxIter = cfg.MaxIter
		opts.BatchSize = cfg.BatchSize
		opts.Tol = cfg.Tol
		opts.NInit = cfg.NInit
		opts.MaxNoImprovement = cfg.MaxNoImprovement
		opts.ReassignmentRatio = cfg.ReassignmentRatio
	}

	// Flags set explicitly win over the config file.
	if cmd.Flags().Changed("clusters") {
		opts.Clusters = fitClusters
	}
	if cmd.Flags().Changed("init") {
		opts.Init = codebook.InitStrategy(fitInit)
	}
	if cmd.Flags().Changed("max-iter") {
		opts.MaxIter = fitMaxIter
	}
	if cmd.Flags().Changed("batch-size") {
		opts.BatchSize = fitBatchSize
	}
	if cmd.Flags().Changed("tol") {
		opts.Tol = fitTol
	}
	if cmd.Flags().Changed("n-init") {
		opts.NInit = fitNInit
	}
	if cmd.Flags().Changed("max-no-improvement") {
		opts.MaxNoImprovement = fitNoImprove
	}
	if cmd.Flags().Changed("reassignment-ratio") {
		opts.ReassignmentRatio = fitReassignment
	}

	return opts, nil
}

func readCorpusFile(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vectors, err := codebook.ReadCorpus(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return vectors, nil
}
