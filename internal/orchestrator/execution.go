// Package orchestrator fans out one runner-adapter process per project and
// supervises the whole fleet with fail-fast semantics and a single global
// deadline.
package orchestrator

import (
	"os/exec"
	"time"

	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/logsink"
)

// Status is the lifecycle state of one execution. Only the monitor
// goroutine writes it after dispatch.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusCancelled
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Terminal reports whether the execution has reached a final state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled || s == StatusTimedOut
}

// Execution tracks one child process from spawn to reap. The dispatcher
// creates it; afterwards the monitor goroutine is its sole writer until the
// run ends, so readers outside the orchestrator only see it in RunResult.
type Execution struct {
	Project   discover.Project
	Argv      []string
	Cmd       *exec.Cmd
	Sink      *logsink.Sink
	StartedAt time.Time
	Status    Status
	// ExitCode is the child's exit code, or -1 when the child never ran
	// or was killed by a signal.
	ExitCode int
	Err      error
}

// Outcome classifies a whole run.
type Outcome int

const (
	// OutcomeSuccess means every execution succeeded.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means at least one execution failed and the rest
	// were cancelled.
	OutcomeFailure
	// OutcomeTimeout means the global deadline expired with executions
	// still running.
	OutcomeTimeout
	// OutcomeNoProjects means there was nothing to run.
	OutcomeNoProjects
)

// RunResult is the immutable outcome of a run.
type RunResult struct {
	Outcome Outcome
	// Trigger is the execution whose failure ended the run early. Nil
	// for every other outcome, including timeouts, which have no single
	// culprit.
	Trigger    *Execution
	Elapsed    time.Duration
	Executions []*Execution
	// Interrupted is set when the run was cancelled from outside, for
	// example by SIGINT.
	Interrupted bool
}

// ExitCode maps the outcome to the process exit code. An empty fleet is a
// valid, successful run.
func (r RunResult) ExitCode() int {
	if r.Interrupted {
		return 1
	}
	switch r.Outcome {
	case OutcomeSuccess, OutcomeNoProjects:
		return 0
	default:
		return 1
	}
}
