package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// rootCmd runs the whole fleet when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "testfleet",
	Short: "Run every sample project's test suite in parallel",
	Long: `testfleet discovers the independently testable sample projects in a
multi-platform cookbook repository, classifies each by its platform marker
(pubspec.yaml, package.json, Cargo.toml, ...), and runs one external test
adapter per project in parallel. The first failure cancels the rest; a
global deadline bounds the whole run.

Usage:
  testfleet          Discover projects and run all test suites
  testfleet init     Write a default .testfleet.yaml
  testfleet doctor   Check that every configured adapter is available`,
	Version:      version,
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
