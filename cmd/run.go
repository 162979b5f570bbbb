package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ditto-examples/testfleet/internal/config"
	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/logsink"
	"github.com/ditto-examples/testfleet/internal/orchestrator"
	"github.com/ditto-examples/testfleet/internal/registry"
	"github.com/ditto-examples/testfleet/internal/report"
	"github.com/ditto-examples/testfleet/internal/ui"
)

var errRunFailed = errors.New("test run failed")

func init() {
	rootCmd.Flags().StringP("config", "c", config.DefaultFileName, "Path to the configuration file")
	rootCmd.Flags().DurationP("timeout", "t", 0, "Override the global deadline (0 = use config)")
	rootCmd.Flags().Bool("no-tui", false, "Disable the dashboard (plain scrolling output)")
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	timeoutFlag, _ := cmd.Flags().GetDuration("timeout")
	noTUI, _ := cmd.Flags().GetBool("no-tui")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if timeoutFlag > 0 {
		cfg.Timeout = config.Duration(timeoutFlag)
	}

	reg, err := registry.FromConfig(cfg)
	if err != nil {
		return err
	}

	reporter := report.NewReporter(os.Stdout)

	projects, rejected := discover.Discover(cfg.Roots)
	reporter.Discovery(projects, rejected)

	var runnable []discover.Project
	var tasks []orchestrator.Task
	for _, p := range projects {
		argv, err := reg.Lookup(p.Platform)
		if err != nil {
			reporter.SkippedNoAdapter(p)
			continue
		}
		runnable = append(runnable, p)
		tasks = append(tasks, orchestrator.Task{Project: p, Argv: argv})
	}

	collector, err := logsink.NewCollector()
	if err != nil {
		return err
	}
	defer collector.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := &orchestrator.Orchestrator{
		Collector: collector,
		Timeout:   time.Duration(cfg.Timeout),
	}

	useTUI := !noTUI && len(tasks) > 0 && isatty.IsTerminal(os.Stdout.Fd())

	var res orchestrator.RunResult
	if useTUI {
		runner := ui.NewDashboardRunner(runnable)
		orch.Events = runner
		orch.Mirror = runner.MirrorWriter
		if err := runner.Run(ctx, func(ctx context.Context) {
			res = orch.Run(ctx, tasks)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		}
	} else {
		orch.Events = reporter
		if len(tasks) > 0 {
			reporter.Dispatch(len(tasks), time.Duration(cfg.Timeout))
		}
		res = orch.Run(ctx, tasks)
	}

	reporter.Summary(res, collector.ReadLog)

	if res.ExitCode() != 0 {
		return errRunFailed
	}
	return nil
}
