package cli

import (
	"os"
	"path/filepath"

	"github.com/absmach/fldash/pkg/fl"
	"github.com/spf13/cobra"
)

var (
	description string
	modelFile   string
	outputPath  string
)

func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [list|view|create|download]",
		Short: "Models manager",
		Long:  `List, view, create and download models.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List models",
		Long:  `List models.`,
		Run: func(cmd *cobra.Command, _ []string) {
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			page, err := svc.ListModels(cmd.Context(), tkn, defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View model",
		Long:  `View model.`,
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

			m, err := svc.GetModel(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create model",
		Long: `Create model from a model file. A name is generated when none is given.

Examples:
  fldash-cli models create mnist-cnn --file mnist.pt --description "digits classifier"`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			tkn, err := token()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			if modelFile == "" {
				logUsageCmd(*cmd, cmd.Use+" --file <path>")

				return
			}
			data, err := os.ReadFile(modelFile)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			m := fl.Model{Description: description}
			if len(args) == 1 {
				m.Name = args[0]
			}
			m, err = svc.CreateModel(cmd.Context(), tkn, m, fl.ModelFile{Name: filepath.Base(modelFile), Data: data})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, m)
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Model description")
	createCmd.Flags().StringVarP(&modelFile, "file", "f", "", "Model file to upload")

	downloadCmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download model file",
		Long: `Download the file of a model. The file is written to the current
directory under the name the backend reports unless --output is given.

Examples:
  fldash-cli models download 7 --output mnist.pt`,
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

			file, err := svc.DownloadModel(cmd.Context(), tkn, args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			path := outputPath
			if path == "" {
				path = filepath.Base(file.Name)
			}
			if err := os.WriteFile(path, file.Data, filePermission); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, "Model written to "+path)
		},
	}
	downloadCmd.Flags().StringVar(&outputPath, "output", "", "Output file path")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(createCmd)
	cmd.AddCommand(downloadCmd)

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
