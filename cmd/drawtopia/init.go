package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/drawtopia/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/drawtopia.yaml
var configTemplate embed.FS

const templatePath = "templates/drawtopia.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a drawtopia configuration file",
		Long: `Init writes a commented .drawtopia configuration file.

The file documents every setting: default colour and palette, brush
widths and opacities, zoom limits, the measurement unit and drawing
scale, the export directory and label size.

Examples:
  # Create .drawtopia in the current directory
  drawtopia init

  # Create the file somewhere else
  drawtopia init -o ~/.config/drawtopia/config.yaml

  # Overwrite an existing file
  drawtopia init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to change settings such as:")
	fmt.Fprintln(out, "  - the default colour and palette")
	fmt.Fprintln(out, "  - brush widths and opacities")
	fmt.Fprintln(out, "  - the measurement unit and drawing scale")

	return nil
}
