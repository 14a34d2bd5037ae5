package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Faultbox/matedit/internal/editor"
)

var pickCmd = &cobra.Command{
	Use:   "pick <model.yaml> <x> <y>",
	Short: "Report the mesh under a viewport pixel",
	Long: `Pick casts a ray from the framing camera through pixel (x, y) of the
configured viewport and prints the nearest mesh.`,
	Args: cobra.ExactArgs(3),
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(args[2], 32)
	if err != nil {
		return fmt.Errorf("invalid y: %w", err)
	}

	s, err := openModel(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	n := s.editor.Pick(editor.Pointer{X: float32(x), Y: float32(y)}, s.viewport, s.camera)
	if n == nil {
		fmt.Fprintln(out, "no mesh under pointer")
		return nil
	}

	fmt.Fprintf(out, "Mesh:     %s\n", n.Name)
	fmt.Fprintf(out, "ID:       %s\n", n.ID)
	fmt.Fprintf(out, "Map ID:   %s\n", n.MapID)
	fmt.Fprintf(out, "Material: %s (%s)\n", n.Material.Name, n.Material.Class.Short())
	if n.Anchor != nil {
		fmt.Fprintf(out, "Anchor:   %.3f %.3f %.3f\n", n.Anchor.X(), n.Anchor.Y(), n.Anchor.Z())
	}
	return nil
}
