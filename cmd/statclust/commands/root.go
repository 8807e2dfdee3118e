package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/statclust"
)

const appName = "statclust"

// app holds global flags and the resolved configuration of one invocation.
type app struct {
	cfgFile string
	format  string
	verbose bool

	// Overrides applied on top of the config file when set.
	k         int
	seed      uint64
	csvPath   string
	htmlURL   string
	storePath string

	cfg    *Config
	logger *statclust.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Cluster entities by their per-entity metrics",
		Long: `statclust - standardize per-entity metrics and group similar entities with K-means.

Records are read from a CSV file or scraped from an HTML statistics table,
z-score normalized per column and clustered. Results can be stored as
snapshots on the local disk, S3 (optionally with a DynamoDB commit log) or
MinIO, and inspected or used for prediction later.

Examples:
  # Cluster players from a CSV file into five groups
  statclust run --csv data/players.csv --k 5

  # Scrape FBref, fall back to CSV, store the result
  statclust -c config.yaml run --save runs/2024.snap

  # Compare several cluster counts
  statclust sweep --csv data/players.csv --ks 3,4,5,6

  # Inspect the latest stored result
  statclust show -o table

  # Assign new metrics to the latest result
  statclust predict 2.1 4.0 31.5
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	pf.StringVarP(&a.format, "output", "o", "text", "output format: text, yaml, json or table")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.IntVar(&a.k, "k", 0, "number of clusters (overrides config)")
	pf.Uint64Var(&a.seed, "seed", 0, "random seed (overrides config)")
	pf.StringVar(&a.csvPath, "csv", "", "CSV record file (overrides config)")
	pf.StringVar(&a.htmlURL, "html", "", "HTML stats table URL (overrides config)")
	pf.StringVar(&a.storePath, "store-path", "", "local snapshot directory (overrides config)")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newSweepCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newPredictCmd(a))

	return rootCmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("k") {
		cfg.K = a.k
	}
	if flags.Changed("seed") {
		seed := a.seed
		cfg.Seed = &seed
	}
	if flags.Changed("csv") {
		cfg.Source.CSV = a.csvPath
	}
	if flags.Changed("html") {
		cfg.Source.HTML = a.htmlURL
	}
	if flags.Changed("store-path") {
		cfg.Store.Kind = "local"
		cfg.Store.Path = a.storePath
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}
