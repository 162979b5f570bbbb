package orchestrator

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// monitor is the single goroutine that owns execution state after dispatch.
// It multiplexes child exits against the global deadline and outside
// cancellation; the loop ends when every execution has produced its exit
// event, so no reaper goroutine is ever leaked.
func (o *Orchestrator) monitor(ctx context.Context, start time.Time, execs []*Execution, byPath map[string]*Execution, exits chan exitEvent) RunResult {
	deadline := time.NewTimer(time.Until(start.Add(o.Timeout)))
	defer deadline.Stop()

	var (
		trigger     *Execution
		timedOut    bool
		interrupted bool
	)
	done := ctx.Done()
	remaining := len(execs)

	for remaining > 0 {
		select {
		case ev := <-exits:
			remaining--
			ex := byPath[ev.path]
			// Executions already marked Cancelled or TimedOut keep
			// that status when their reaped (killed) child arrives.
			if ex.Status == StatusRunning {
				if ev.err == nil {
					ex.Status = StatusSucceeded
					ex.ExitCode = 0
				} else {
					ex.Status = StatusFailed
					ex.ExitCode = exitCodeOf(ev.err)
					ex.Err = ev.err
				}
			}
			if o.Events != nil {
				o.Events.ExecutionFinished(ex)
			}
			if ex.Status == StatusFailed && trigger == nil && !timedOut && !interrupted {
				// Fail fast. Under simultaneous failures the
				// trigger is whichever exit arrived first.
				trigger = ex
				o.stopRunning(execs, StatusCancelled)
			}

		case <-deadline.C:
			// A failure recorded before the deadline keeps the
			// run a failure; the timer firing while its teardown
			// is in flight must not rewrite the outcome.
			if trigger != nil || interrupted {
				continue
			}
			timedOut = true
			// No single culprit: everything still running timed
			// out together.
			o.stopRunning(execs, StatusTimedOut)

		case <-done:
			interrupted = true
			done = nil
			o.stopRunning(execs, StatusCancelled)
		}
	}

	result := RunResult{
		Trigger:     trigger,
		Elapsed:     time.Since(start),
		Executions:  execs,
		Interrupted: interrupted,
	}
	switch {
	case timedOut:
		result.Outcome = OutcomeTimeout
	case trigger != nil:
		result.Outcome = OutcomeFailure
	case anyFailed(execs):
		result.Outcome = OutcomeFailure
	default:
		result.Outcome = OutcomeSuccess
	}
	return result
}

// stopRunning marks every live execution with status and terminates its
// process group. Termination is best effort: TERM first, then KILL after a
// short grace so adapters get a chance to clean up.
func (o *Orchestrator) stopRunning(execs []*Execution, status Status) {
	var pgids []int
	for _, ex := range execs {
		if ex.Status != StatusRunning {
			continue
		}
		ex.Status = status
		if ex.Cmd != nil && ex.Cmd.Process != nil {
			pgids = append(pgids, ex.Cmd.Process.Pid)
		}
	}
	if len(pgids) == 0 {
		return
	}

	for _, pgid := range pgids {
		syscall.Kill(-pgid, syscall.SIGTERM)
	}
	time.Sleep(100 * time.Millisecond)
	for _, pgid := range pgids {
		syscall.Kill(-pgid, syscall.SIGKILL)
	}
}

// exitCodeOf pulls the child exit code out of a Wait error. Signal deaths
// and spawn failures report -1.
func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return -1
}

func anyFailed(execs []*Execution) bool {
	for _, ex := range execs {
		if ex.Status == StatusFailed {
			return true
		}
	}
	return false
}
