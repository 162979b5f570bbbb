package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ditto-examples/testfleet/internal/config"
	"github.com/ditto-examples/testfleet/internal/doctor"
	"github.com/ditto-examples/testfleet/internal/registry"
	"github.com/ditto-examples/testfleet/internal/report"
)

// doctorCmd verifies that every configured runner adapter can be spawned.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that every configured runner adapter is available",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringP("config", "c", config.DefaultFileName, "Path to the configuration file")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	reg, err := registry.FromConfig(cfg)
	if err != nil {
		return err
	}

	d := doctor.Diagnose(reg)
	report.NewReporter(os.Stdout).Doctor(d)

	if !d.Healthy {
		return errors.New("some runner adapters are unavailable")
	}
	return nil
}
