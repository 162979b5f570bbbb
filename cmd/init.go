package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ditto-examples/testfleet/internal/config"
)

// initCmd writes the default configuration so collaborators can customize
// roots, adapters, and the deadline.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .testfleet.yaml configuration file",
	Long: `The init command writes a .testfleet.yaml with the compiled-in
defaults: discovery under the current directory and a testfleet-run-<platform>
adapter for every known platform. Edit it to point at your own adapter
scripts or to narrow the discovery roots.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", config.DefaultFileName, "Output file path for the configuration")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cwd, outputPath)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s. Use --force to overwrite", outputPath)
	}

	if err := config.Write(outputPath, config.Default()); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", outputPath)
	return nil
}
