package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPredictCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "predict <metric>...",
		Short: "Assign new metrics to a stored clustering result",
		Long: `Standardize the given raw metrics with the scaler of a stored result and
print the nearest cluster. Uses the snapshot CURRENT points at unless
--snapshot is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("metric %d: %w", i, err)
				}
				metrics[i] = v
			}

			var names []string
			if name != "" {
				names = []string{name}
			}
			result, err := a.loadResult(cmd.Context(), names)
			if err != nil {
				return err
			}

			cluster, err := result.Predict(metrics)
			if err != nil {
				return err
			}

			switch OutputFormat(a.format) {
			case FormatJSON, FormatYAML:
				return writeStructured(cmd.OutOrStdout(), OutputFormat(a.format), map[string]any{
					"metrics": metrics,
					"cluster": cluster,
				})
			default:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cluster %d\n", cluster)
				return err
			}
		},
	}

	cmd.Flags().StringVar(&name, "snapshot", "", "snapshot name (default: CURRENT)")

	return cmd
}
