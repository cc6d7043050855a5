package cli

import (
	"github.com/absmach/fldash"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	errFailedLogin      = errors.New("failed to log in")
	errFailedSaveConfig = errors.New("failed to save config")
	errMissingCreds     = errors.New("username and password are required")

	username string
	password string
)

func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the backend",
		Long: `Log in to the backend and save the access token to the config file.

Examples:
  # Prompt for credentials
  fldash-cli login

  # Non interactive
  fldash-cli login --username alice --password secret`,
		Run: func(cmd *cobra.Command, _ []string) {
			if username == "" || password == "" {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("Username").
							Value(&username),
						huh.NewInput().
							Title("Password").
							EchoMode(huh.EchoModePassword).
							Value(&password),
					),
				)
				if err := form.Run(); err != nil {
					logErrorCmd(*cmd, errors.Wrap(errFailedLogin, err))

					return
				}
			}
			if username == "" || password == "" {
				logErrorCmd(*cmd, errMissingCreds)

				return
			}

			tkn, err := svc.Login(cmd.Context(), username, password)
			if err != nil {
				logErrorCmd(*cmd, errors.Wrap(errFailedLogin, err))

				return
			}

			cfg.Auth = fldash.AuthConfig{
				Username: username,
				Token:    tkn.AccessToken,
			}
			if err := fldash.SaveConfig(configPath, cfg); err != nil {
				logErrorCmd(*cmd, errors.Wrap(errFailedSaveConfig, err))

				return
			}
			logSuccessCmd(*cmd, "Successfully logged in as "+username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Backend username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Backend password")

	return cmd
}

func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		Long:  `Remove the saved access token from the config file.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg.Auth = fldash.AuthConfig{}
			if err := fldash.SaveConfig(configPath, cfg); err != nil {
				logErrorCmd(*cmd, errors.Wrap(errFailedSaveConfig, err))

				return
			}
			logOKCmd(*cmd)
		},
	}
}

func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Long:  `Show the user owning the saved access token.`,
		Run: func(cmd *cobra.Command, _ []string) {
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			u, err := svc.CurrentUser(cmd.Context(), tkn)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, u)
		},
	}
}
