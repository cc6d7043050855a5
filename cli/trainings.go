package cli

import (
	"context"
	"sync"

	"github.com/absmach/fldash/dashboard"
	"github.com/absmach/fldash/pkg/fl"
	"github.com/spf13/cobra"
)

var (
	targetUpdates uint64
	watched       bool
	metricNames   []string
	aggregation   string
	clients       []string
	eventCount    uint64
)

func NewTrainingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainings [list|view|create|start|delete|participants|locations|watch]",
		Short: "Trainings manager",
		Long:  `Manage trainings, list their participants and watch their state changes.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trainings",
		Long: `List trainings.

Examples:
  # Trainings known to the backend
  fldash-cli trainings list

  # Trainings tracked locally since they were last viewed
  fldash-cli trainings list --watched`,
		Run: func(cmd *cobra.Command, _ []string) {
			if watched {
				page, err := svc.WatchedTrainings(cmd.Context(), defOffset, defLimit)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				logJSONCmd(*cmd, page)

				return
			}

			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			page, err := svc.ListTrainings(cmd.Context(), tkn, defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}
	listCmd.Flags().BoolVarP(&watched, "watched", "w", false, "List watched trainings only")

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View training",
		Long:  `View training.`,
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

			t, err := svc.GetTraining(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, t)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <model_id>",
		Short: "Create training",
		Long: `Create training for a model.

Examples:
  fldash-cli trainings create 7 --target-updates 10

  # FedProx over two clients reporting accuracy and loss
  fldash-cli trainings create 7 -t 10 --aggregation FedProx --clients alice,bob --metrics accuracy,loss`,
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

			method, err := fl.ParseAggregationMethod(aggregation)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			t, err := svc.CreateTraining(cmd.Context(), tkn, fl.Training{
				ModelID:           args[0],
				State:             fl.Initial,
				TargetNumUpdates:  targetUpdates,
				AggregationMethod: method,
				MetricNames:       metricNames,
				Participants:      clients,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, t)
		},
	}
	createCmd.Flags().Uint64VarP(&targetUpdates, "target-updates", "t", 0, "Number of updates the training should reach")
	createCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "Metric names clients report")
	createCmd.Flags().StringVarP(&aggregation, "aggregation", "a", string(fl.FedAvg), "Aggregation method: FedAvg, FedDC or FedProx")
	createCmd.Flags().StringSliceVar(&clients, "clients", nil, "Usernames of the participating clients")

	startCmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start training",
		Long:  `Start a training and watch it for state changes.`,
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

			t, err := svc.StartTraining(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, t)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete training",
		Long:  `Delete a training and stop watching it.`,
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

			if err := svc.DeleteTraining(cmd.Context(), tkn, args[0]); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	participantsCmd := &cobra.Command{
		Use:   "participants <id>",
		Short: "List training participants",
		Long:  `List the participants of a training in display order with their colors.`,
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

			participants, err := svc.TrainingParticipants(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, participants)
		},
	}

	locationsCmd := &cobra.Command{
		Use:   "locations <id>",
		Short: "Participant locations",
		Long:  `Show where the participants of a training are located, keyed by username.`,
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

			locations, err := svc.ParticipantLocations(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, locations)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [id]",
		Short: "Watch training state changes",
		Long: `Print the state changes the dashboard publishes over MQTT. Without an id
every training is watched. The command runs until interrupted or until
--count events were received.

Examples:
  fldash-cli trainings watch
  fldash-cli trainings watch 3 --count 1`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			if subscriber == nil {
				logErrorCmd(*cmd, errNoSubscriber)

				return
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}

			ps, err := subscriber()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer func() {
				if err := ps.Disconnect(context.Background()); err != nil {
					logErrorCmd(*cmd, err)
				}
			}()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var (
				mu       sync.Mutex
				received uint64
			)
			handler := func(_ string, msg map[string]any) error {
				mu.Lock()
				defer mu.Unlock()

				if eventCount > 0 && received >= eventCount {
					return nil
				}
				logJSONCmd(*cmd, msg)
				received++
				if eventCount > 0 && received >= eventCount {
					cancel()
				}

				return nil
			}

			topic := dashboard.StateTopic(cfg.MQTT.TopicPrefix, id)
			logSuccessCmd(*cmd, "Watching "+topic)
			if err := ps.Subscribe(ctx, topic, handler); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			<-ctx.Done()

			if err := ps.Unsubscribe(context.Background(), topic); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}
	watchCmd.Flags().Uint64Var(&eventCount, "count", 0, "Exit after this many events, 0 watches until interrupted")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(createCmd)
	cmd.AddCommand(startCmd)
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(participantsCmd)
	cmd.AddCommand(locationsCmd)
	cmd.AddCommand(watchCmd)

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
