package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Faultbox/matedit/internal/editor"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved editing sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		keys, err := st.Keys(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range keys {
			var s editor.Session
			if _, err := st.Load(cmd.Context(), k, &s); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s (unreadable: %v)\n", k, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-20s %3d records  %s\n", k, s.Model, len(s.Records), s.SavedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionRestoreCmd = &cobra.Command{
	Use:   "restore <model.yaml> <key>",
	Short: "Load a model and re-apply a saved session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := openModel(ctx, args[0])
		if err != nil {
			return err
		}
		found, missing, err := s.editor.LoadSession(ctx, st, args[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no session %q", args[1])
		}
		for _, id := range missing {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: no mesh for %s\n", id)
		}
		return printList(cmd.OutOrStdout(), s.editor.ListCurrentMaterials(), false)
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Remove(cmd.Context(), args[0])
	},
}

func init() {
	sessionCmd.AddCommand(sessionListCmd, sessionRestoreCmd, sessionRemoveCmd)
	rootCmd.AddCommand(sessionCmd)
}
