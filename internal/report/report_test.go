package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/doctor"
	"github.com/ditto-examples/testfleet/internal/orchestrator"
	"github.com/ditto-examples/testfleet/internal/platform"
)

func proj(name string) discover.Project {
	return discover.Project{Name: name, Path: "/fleet/" + name, Platform: platform.JS}
}

func TestDiscoveryBanner(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Discovery(
		[]discover.Project{proj("alpha"), proj("beta")},
		[]discover.Rejected{{Path: "/fleet/mystery", Reason: errors.New("no platform marker found")}},
	)

	out := buf.String()
	for _, want := range []string{"Discovered 2 projects", "alpha", "beta", "(js)", "mystery", "no platform marker"} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestSummarySuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Summary(orchestrator.RunResult{
		Outcome: orchestrator.OutcomeSuccess,
		Elapsed: 42 * time.Second,
		Executions: []*orchestrator.Execution{
			{Project: proj("alpha"), Status: orchestrator.StatusSucceeded},
			{Project: proj("beta"), Status: orchestrator.StatusSucceeded},
		},
	}, nil)

	out := buf.String()
	if !strings.Contains(out, "All 2 test suites passed") {
		t.Errorf("missing success summary:\n%s", out)
	}
	if !strings.Contains(out, "42s") {
		t.Errorf("missing elapsed time:\n%s", out)
	}
}

func TestSummaryFailureShowsTriggerLogAndCancellations(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	trigger := &orchestrator.Execution{
		Project:  proj("bad"),
		Status:   orchestrator.StatusFailed,
		ExitCode: 1,
	}
	res := orchestrator.RunResult{
		Outcome: orchestrator.OutcomeFailure,
		Trigger: trigger,
		Executions: []*orchestrator.Execution{
			trigger,
			{Project: proj("slow"), Status: orchestrator.StatusCancelled},
			{Project: proj("done"), Status: orchestrator.StatusSucceeded},
		},
	}

	r.Summary(res, func(path string) ([]byte, error) {
		if path != trigger.Project.Path {
			t.Errorf("read log for %q, want trigger's path", path)
		}
		return []byte("expected 4, got 5\n"), nil
	})

	out := buf.String()
	if !strings.Contains(out, "bad failed (exit 1)") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "expected 4, got 5") {
		t.Errorf("missing trigger log:\n%s", out)
	}
	if !strings.Contains(out, "1 remaining executions were cancelled") {
		t.Errorf("missing cancellation notice:\n%s", out)
	}
}

func TestSummaryTimeout(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Summary(orchestrator.RunResult{
		Outcome: orchestrator.OutcomeTimeout,
		Elapsed: 10 * time.Minute,
		Executions: []*orchestrator.Execution{
			{Project: proj("hang"), Status: orchestrator.StatusTimedOut},
			{Project: proj("ok"), Status: orchestrator.StatusSucceeded},
		},
	}, nil)

	out := buf.String()
	if !strings.Contains(out, "deadline exceeded") {
		t.Errorf("missing timeout line:\n%s", out)
	}
	if !strings.Contains(out, "1 executions still running") {
		t.Errorf("timeout count wrong:\n%s", out)
	}
}

func TestSummaryNoProjects(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Summary(orchestrator.RunResult{Outcome: orchestrator.OutcomeNoProjects}, nil)

	if !strings.Contains(buf.String(), "No testable projects found") {
		t.Errorf("missing no-projects notice:\n%s", buf.String())
	}
}

func TestDoctorOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Doctor(doctor.Diagnosis{
		Healthy: false,
		Adapters: []doctor.AdapterStatus{
			{Platform: platform.JS, Available: true, Path: "/usr/local/bin/testfleet-run-js"},
			{Platform: platform.Rust, Available: false, Detail: "testfleet-run-rust not found on PATH"},
		},
	})

	out := buf.String()
	if !strings.Contains(out, "/usr/local/bin/testfleet-run-js") {
		t.Errorf("missing resolved path:\n%s", out)
	}
	if !strings.Contains(out, "not found on PATH") {
		t.Errorf("missing failure detail:\n%s", out)
	}
	if strings.Contains(out, "All adapters available") {
		t.Errorf("unhealthy diagnosis should not report all available:\n%s", out)
	}
}

func TestExecutionEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	ex := &orchestrator.Execution{Project: proj("alpha"), Status: orchestrator.StatusRunning}
	r.ExecutionStarted(ex)

	ex.Status = orchestrator.StatusFailed
	ex.ExitCode = 2
	r.ExecutionFinished(ex)

	out := buf.String()
	if strings.Count(out, "alpha") != 2 {
		t.Errorf("expected start and finish lines:\n%s", out)
	}
	if !strings.Contains(out, "exit 2") {
		t.Errorf("missing exit code:\n%s", out)
	}
}
