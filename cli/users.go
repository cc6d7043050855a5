package cli

import "github.com/spf13/cobra"

func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users [list]",
		Short: "Users manager",
		Long:  `List the users registered with the backend.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  `List users with their colors and locations.`,
		Run: func(cmd *cobra.Command, _ []string) {
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			users, err := svc.ListUsers(cmd.Context(), tkn)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, users)
		},
	}

	cmd.AddCommand(listCmd)

	return cmd
}
