package commands

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/snapshot"
	"github.com/hupe1980/statclust/source/csvfile"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		save   string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load records, cluster them and print the assignments",
		Long: `Load records from the configured source, optionally save the raw records
as CSV, cluster them into k groups and print one line per record.

With --save the result is stored as a snapshot (and the raw records next to
it under records/), and CURRENT is pointed at it unless --commit=false.`,
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
			a.logger.InfoContext(ctx, "records loaded", "count", len(records))

			if raw := a.cfg.Source.RawCSV; raw != "" {
				if err := csvfile.SaveFile(raw, records); err != nil {
					return fmt.Errorf("failed to save raw records: %w", err)
				}
			}

			opts, err := a.cfg.ClusterOptions(a.logger)
			if err != nil {
				return err
			}
			result, err := statclust.Cluster(ctx, records, a.cfg.K, opts...)
			if err != nil {
				return err
			}

			if err := writeResult(cmd.OutOrStdout(), OutputFormat(a.format), result); err != nil {
				return err
			}

			if save == "" {
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

			err = snapshot.SaveResult(ctx, store, save, result, snapOpts...)
			a.logger.LogSave(ctx, save, err)
			if err != nil {
				return err
			}

			recordsName := path.Join("records", path.Base(save))
			err = snapshot.SaveRecords(ctx, store, recordsName, records, snapOpts...)
			a.logger.LogSave(ctx, recordsName, err)
			if err != nil {
				return err
			}

			if commit {
				if err := snapshot.Commit(ctx, store, save); err != nil {
					return fmt.Errorf("failed to commit %s: %w", save, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "store the result snapshot under this name")
	cmd.Flags().BoolVar(&commit, "commit", true, "point CURRENT at the saved snapshot")

	return cmd
}
