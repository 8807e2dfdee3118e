package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hupe1980/statclust"
	"github.com/hupe1980/statclust/snapshot"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [snapshot]",
		Short: "Print a stored clustering result",
		Long: `Load a result snapshot from the configured store and print it.
Without an argument the snapshot CURRENT points at is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.loadResult(cmd.Context(), args)
			if err != nil {
				return err
			}

			format := OutputFormat(a.format)
			if format == FormatText {
				format = FormatYAML
			}
			return writeResult(cmd.OutOrStdout(), format, result)
		},
	}
}

// loadResult loads args[0], or CURRENT when no name is given.
func (a *app) loadResult(ctx context.Context, args []string) (*statclust.Result, error) {
	store, err := a.cfg.BlobStore(ctx)
	if err != nil {
		return nil, err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else if name, err = snapshot.Current(ctx, store); err != nil {
		a.logger.LogLoad(ctx, snapshot.CurrentName, err)
		return nil, err
	}

	result, err := snapshot.LoadResult(ctx, store, name)
	a.logger.LogLoad(ctx, name, err)
	return result, err
}
