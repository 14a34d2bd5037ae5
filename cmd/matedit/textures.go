package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Faultbox/matedit/pkg/scene"
)

var previewsDir string

var previewsCmd = &cobra.Command{
	Use:   "previews <model.yaml>",
	Short: "Render thumbnails of the model's embedded textures",
	Long: `Previews draws every embedded texture into a fixed-size thumbnail. By default
the thumbnails are printed as data URLs; with --out they are written as PNG files.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreviews,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the system texture catalog",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

func init() {
	previewsCmd.Flags().StringVarP(&previewsDir, "out", "o", "", "Write PNG thumbnails to this directory")
	rootCmd.AddCommand(previewsCmd)
	rootCmd.AddCommand(presetsCmd)
}

func runPreviews(cmd *cobra.Command, args []string) error {
	s, err := openModel(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var materials []*scene.Material
	for _, n := range s.editor.Model().Meshes() {
		materials = append(materials, n.Material)
	}

	out := cmd.OutOrStdout()
	if previewsDir == "" {
		previews, err := s.textures.EmbeddedPreviews(materials)
		if err != nil {
			return err
		}
		for _, p := range previews {
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.Material, p.Texture, p.URL)
		}
		return nil
	}

	if err := os.MkdirAll(previewsDir, 0755); err != nil {
		return err
	}
	written := 0
	for _, m := range materials {
		if m.Map == nil {
			continue
		}
		tex, err := s.textures.Preview(m)
		if err != nil {
			return err
		}
		path := filepath.Join(previewsDir, fmt.Sprintf("%s_%s.png", m.Name, tex.Name))
		if err := writePNG(path, tex); err != nil {
			return err
		}
		written++
	}
	fmt.Fprintf(out, "%d previews written to %s\n", written, previewsDir)
	return nil
}

func writePNG(path string, tex *scene.Texture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, tex.Image); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func runPresets(cmd *cobra.Command, args []string) error {
	svc, err := newTextureService(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	cat := svc.Catalog()
	if cat.Len() == 0 {
		fmt.Fprintln(out, "no texture catalog configured")
		return nil
	}
	fmt.Fprintf(out, "%-16s %-24s %-6s %s\n", "ID", "NAME", "FORMAT", "URL")
	for _, p := range cat.Presets {
		fmt.Fprintf(out, "%-16s %-24s %-6s %s\n", p.ID, p.Name, p.Format, p.URL)
	}
	return nil
}
