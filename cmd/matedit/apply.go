package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/matedit/internal/logger"
)

var (
	applySave   string
	applyYAML   bool
	applyRedraw bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <model.yaml> <script.yaml>",
	Short: "Apply an editing script to a model",
	Long: `Apply runs the steps of an editing script against a freshly loaded model
and prints the resulting material list. With --save the edits are stored as a
session that "session restore" can re-apply later.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applySave, "save", "", "Save the result as a session under this key")
	applyCmd.Flags().BoolVar(&applyYAML, "yaml", false, "Print the material list as YAML")
	applyCmd.Flags().BoolVar(&applyRedraw, "redraws", false, "Report how many redraws were requested")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	script, err := LoadScript(args[1])
	if err != nil {
		return err
	}
	s, err := openModel(ctx, args[0])
	if err != nil {
		return err
	}
	s.out = cmd.OutOrStdout()
	if err := script.Run(ctx, s); err != nil {
		return err
	}

	if applySave != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := s.editor.SaveSession(ctx, st, applySave); err != nil {
			return err
		}
		logger.Sugar.Infof("session %q saved", applySave)
	}

	if applyRedraw {
		fmt.Fprintf(cmd.OutOrStdout(), "%d redraws requested\n", s.host.redraws)
	}
	return printList(cmd.OutOrStdout(), s.editor.ListCurrentMaterials(), applyYAML)
}
