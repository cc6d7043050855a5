package cli

import (
	"os"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/spf13/cobra"
)

const filePermission = 0o644

var (
	errFailedWriteChart = errors.New("failed to write chart")

	selection string
	output    string
	width     int
	height    int
)

func NewMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [keys|chart]",
		Short: "Model metrics",
		Long:  `Discover metric keys of a model and build chart series from them.`,
	}

	keysCmd := &cobra.Command{
		Use:   "keys <model_id>",
		Short: "List metric keys",
		Long:  `List the distinct metric keys reported for a model, sorted.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			keys, err := svc.MetricKeys(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, keys)
		},
	}

	chartCmd := &cobra.Command{
		Use:   "chart <model_id> <key>",
		Short: "Build chart series",
		Long: `Build the chart series of a metric key.

Selection is "all", "serverMean" or a participant id.

Examples:
  # Series of every participant
  fldash-cli metrics chart 7 accuracy

  # Mean over participants, rendered to a file
  fldash-cli metrics chart 7 loss --selection serverMean --output loss.png`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			sel := metrics.ParseSelection(selection)

			if output != "" {
				w, h := min(width, dashboard.MaxChartWidth), min(height, dashboard.MaxChartHeight)
				img, err := svc.RenderModelChart(cmd.Context(), tkn, args[0], args[1], sel, w, h)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				if err := os.WriteFile(output, img, filePermission); err != nil {
					logErrorCmd(*cmd, errors.Wrap(errFailedWriteChart, err))

					return
				}
				logSuccessCmd(*cmd, "Chart written to "+output)

				return
			}

			data, err := svc.ModelChart(cmd.Context(), tkn, args[0], args[1], sel)
			if err != nil {
				logErrorCmd(*cmd, err)
				if len(data.Lines) == 0 {
					return
				}
			}
			logJSONCmd(*cmd, data)
		},
	}
	chartCmd.Flags().StringVarP(&selection, "selection", "s", "all", "Series selection")
	chartCmd.Flags().StringVar(&output, "output", "", "Render the chart as PNG to this file")
	chartCmd.Flags().IntVar(&width, "width", dashboard.DefChartWidth, "PNG width")
	chartCmd.Flags().IntVar(&height, "height", dashboard.DefChartHeight, "PNG height")

	cmd.AddCommand(keysCmd)
	cmd.AddCommand(chartCmd)

	return cmd
}
