package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/matedit/internal/editor"
	"github.com/Faultbox/matedit/pkg/scene"
)

var listYAML bool

var listCmd = &cobra.Command{
	Use:   "list <model.yaml>",
	Short: "List the meshes and materials of a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "Print the material list as YAML")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openModel(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printList(cmd.OutOrStdout(), s.editor.ListCurrentMaterials(), listYAML)
}

func printList(w io.Writer, entries []editor.MaterialListEntry, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(entries)
	}

	fmt.Fprintf(w, "%-20s %-24s %-10s %-8s %-8s %-5s %-5s %s\n",
		"MAP ID", "NAME", "CLASS", "COLOR", "OPACITY", "WIRE", "DEPTH", "VISIBLE")
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s %-24s %-10s %-8s %-8.2f %-5v %-5v %v",
			e.MapID, e.Name, scene.MaterialClass(e.Class).Short(), e.Material.Color,
			e.Material.Opacity, e.Material.Wireframe, e.Material.DepthWrite, e.Visible)
		if e.TextureSource != "" {
			fmt.Fprintf(w, " [%s]", e.TextureSource)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d meshes\n", len(entries))
	return nil
}
