package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/absmach/fldash"
	"github.com/absmach/fldash/cli"
	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/dashboard/middleware"
	"github.com/absmach/fldash/pkg/metrics"
	"github.com/absmach/fldash/pkg/mqtt"
	"github.com/absmach/fldash/pkg/sdk"
	"github.com/absmach/fldash/pkg/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	appName        = "fldash"
	configFileName = "config.toml"
	dataDirName    = "data"
	mqttQoS        = 1
	mqttTimeout    = 30 * time.Second
)

func main() {
	var (
		configPath string
		repos      *storage.Repositories
	)

	rootCmd := &cobra.Command{
		Use:   "fldash-cli",
		Short: "Federated learning dashboard CLI",
		Long:  `fldash-cli is a command line interface for browsing federated learning models, trainings and their metric charts.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := fldash.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cli.SetConfig(configPath, cfg)

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

			repos, err = storage.NewRepositories(storage.Config{
				Type:       "badger",
				BadgerPath: filepath.Join(filepath.Dir(configPath), dataDirName),
			})
			if err != nil {
				logger.Warn("local store unavailable, using in-memory store", slog.Any("error", err))
				if repos, err = storage.NewRepositories(storage.Config{Type: "memory"}); err != nil {
					return err
				}
			}

			backend := sdk.NewSDK(sdk.Config{
				BackendURL:      cfg.Backend.URL,
				AuthScheme:      cfg.Backend.AuthScheme,
				TLSVerification: !cfg.Backend.InsecureSkipVerify,
			})

			svc := dashboard.NewService(backend, repos.Snapshots, repos.Trainings, metrics.NewBuilder(), logger)
			cli.SetService(middleware.Logging(logger, svc))
			cli.SetSubscriber(func() (mqtt.PubSub, error) {
				clientID := fmt.Sprintf("%s-cli-%s", appName, uuid.NewString())

				return mqtt.NewPubSub(cfg.MQTT.Address, mqttQoS, clientID, cfg.MQTT.Username, cfg.MQTT.Password, "", mqttTimeout, logger)
			})

			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if repos != nil && repos.Closer != nil {
				return repos.Closer.Close()
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Config file path")

	rootCmd.AddCommand(cli.NewLoginCmd())
	rootCmd.AddCommand(cli.NewLogoutCmd())
	rootCmd.AddCommand(cli.NewWhoamiCmd())
	rootCmd.AddCommand(cli.NewModelsCmd())
	rootCmd.AddCommand(cli.NewTrainingsCmd())
	rootCmd.AddCommand(cli.NewMetricsCmd())
	rootCmd.AddCommand(cli.NewUsersCmd())
	rootCmd.AddCommand(cli.NewSnapshotsCmd())
	rootCmd.AddCommand(cli.NewInferenceCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	return filepath.Join(dir, appName, configFileName)
}
