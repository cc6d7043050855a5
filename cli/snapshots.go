package cli

import "github.com/spf13/cobra"

func NewSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots [list]",
		Short: "Metric snapshots",
		Long:  `Inspect the metric snapshots cached in the local store.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Long: `List cached snapshots ordered by model id.

Examples:
  fldash-cli snapshots list --limit 20`,
		Run: func(cmd *cobra.Command, _ []string) {
			page, err := svc.Snapshots(cmd.Context(), defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	cmd.AddCommand(listCmd)

	cmd.PersistentFlags().Uint64VarP(
		&defOffset,
		"offset",
		"o",
		defOffset,
		"Offset",
	)

	cmd.PersistentFlags().Uint64VarP(
		&defLimit,
		"limit",
		"l",
		defLimit,
		"Limit",
	)

	return cmd
}
