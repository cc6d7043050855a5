package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func NewInferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inference <JSON_request>",
		Short: "Run inference",
		Long: `Send an inference request to the backend and print its response.

Examples:
  fldash-cli inference '{"model_id": 7, "model_input": [[0.1, 0.2]]}'`,
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

			var req map[string]any
			if err := json.Unmarshal([]byte(args[0]), &req); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			res, err := svc.Inference(cmd.Context(), tkn, req)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}
}
