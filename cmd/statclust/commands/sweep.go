package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/snapshot"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		ks          []int
		parallelism int
		savePrefix  string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Cluster the same records for several k",
		Long: `Cluster the loaded records once per value of --ks, running up to
--parallelism runs at a time, and print a summary per k.

With --save-prefix every result is stored as <prefix>k<k>.snap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			loader, err := a.cfg.Loader(a.logger)
			if err != nil {
				return err
			}
			records, err := loader.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load records: %w", err)
			}

			opts, err := a.cfg.ClusterOptions(a.logger)
			if err != nil {
				return err
			}
			opts = append(opts, statclust.WithParallelism(parallelism))

			results, err := statclust.Sweep(ctx, records, ks, opts...)
			if err != nil {
				return err
			}

			if err := writeSweep(cmd.OutOrStdout(), OutputFormat(a.format), results); err != nil {
				return err
			}

			if savePrefix == "" {
				return nil
			}

			store, err := a.cfg.BlobStore(ctx)
			if err != nil {
				return err
			}
			snapOpts, err := a.cfg.SnapshotOptions()
			if err != nil {
				return err
			}
			for _, r := range results {
				name := fmt.Sprintf("%sk%d.snap", savePrefix, r.K)
				err := snapshot.SaveResult(ctx, store, name, r, snapOpts...)
				a.logger.LogSave(ctx, name, err)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&ks, "ks", []int{2, 3, 4, 5, 6}, "cluster counts to try")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "concurrent runs (default GOMAXPROCS)")
	cmd.Flags().StringVar(&savePrefix, "save-prefix", "", "store each result under this name prefix")

	return cmd
}
