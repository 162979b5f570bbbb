package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/logsink"
)

// Task pairs a discovered project with the adapter argv that runs its tests.
// The project path is appended as the adapter's final argument at spawn.
type Task struct {
	Project discover.Project
	Argv    []string
}

// Events receives execution lifecycle notifications on the monitor
// goroutine. Implementations must not block; the console reporter and the
// dashboard bridge both just forward.
type Events interface {
	ExecutionStarted(ex *Execution)
	ExecutionFinished(ex *Execution)
}

// Orchestrator runs a fleet of tasks to completion.
type Orchestrator struct {
	// Collector owns the log sinks. Required.
	Collector *logsink.Collector
	// Timeout is the global deadline, measured from the first spawn.
	Timeout time.Duration
	// Events is optional.
	Events Events
	// Mirror, when set, supplies an extra writer that receives a live
	// copy of the execution's output alongside its sink. Used by the
	// plain-mode reporter and the dashboard log multiplexer.
	Mirror func(index int, p discover.Project) io.Writer
}

// exitEvent is one reaped child. Every dispatched execution produces
// exactly one, synthetic ones included, so the monitor can count down.
type exitEvent struct {
	path string
	err  error
}

// Run dispatches every task and supervises the fleet until all executions
// reach a terminal state. The full fan-out happens before monitoring
// begins; there is no throttling.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) RunResult {
	if len(tasks) == 0 {
		return RunResult{Outcome: OutcomeNoProjects}
	}

	execs := make([]*Execution, 0, len(tasks))
	byPath := make(map[string]*Execution, len(tasks))
	exits := make(chan exitEvent, len(tasks))
	start := time.Now()

	for i, t := range tasks {
		argv := make([]string, 0, len(t.Argv)+1)
		argv = append(argv, t.Argv...)
		argv = append(argv, t.Project.Path)

		ex := &Execution{
			Project:   t.Project,
			Argv:      argv,
			StartedAt: time.Now(),
			Status:    StatusPending,
			ExitCode:  -1,
		}
		execs = append(execs, ex)
		byPath[t.Project.Path] = ex

		if err := o.spawn(ex, i); err != nil {
			// SpawnFailure counts as a test failure; the synthetic
			// event keeps the countdown honest and lets fail-fast
			// trigger the usual way.
			ex.Status = StatusFailed
			ex.Err = err
			exits <- exitEvent{path: t.Project.Path, err: err}
			continue
		}

		ex.Status = StatusRunning
		if o.Events != nil {
			o.Events.ExecutionStarted(ex)
		}

		cmd := ex.Cmd
		path := t.Project.Path
		go func() {
			exits <- exitEvent{path: path, err: cmd.Wait()}
		}()
	}

	return o.monitor(ctx, start, execs, byPath, exits)
}

func (o *Orchestrator) spawn(ex *Execution, index int) error {
	sink, err := o.Collector.Open(ex.Project.Path)
	if err != nil {
		return err
	}
	ex.Sink = sink

	var out io.Writer = sink
	if o.Mirror != nil {
		if w := o.Mirror(index, ex.Project); w != nil {
			out = io.MultiWriter(sink, w)
		}
	}

	cmd := exec.Command(ex.Argv[0], ex.Argv[1:]...)
	cmd.Dir = ex.Project.Path
	cmd.Stdout = out
	cmd.Stderr = out
	// Own process group so termination reaches the adapter's whole
	// subtree, not just the adapter itself.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	ex.StartedAt = time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawning adapter for %s: %w", ex.Project.Name, err)
	}
	ex.Cmd = cmd
	return nil
}
