// Package report renders the console output for a run: discovery banner,
// dispatch progress, per-execution status lines, and the final summary that
// decides the process exit code.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/doctor"
	"github.com/ditto-examples/testfleet/internal/orchestrator"
)

// styles holds the lipgloss styles for console output.
type styles struct {
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Banner  lipgloss.Style
	LogBox  lipgloss.Style
}

func defaultStyles() *styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
	highlight := lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#AD8EE6"}
	success := lipgloss.AdaptiveColor{Light: "#00AA00", Dark: "#00FF00"}
	warning := lipgloss.AdaptiveColor{Light: "#AAAA00", Dark: "#FFFF00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF0000"}
	info := lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#00AAFF"}

	return &styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(highlight),
		Subtle:  lipgloss.NewStyle().Foreground(subtle),
		Success: lipgloss.NewStyle().Foreground(success),
		Failure: lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(warning),
		Info:    lipgloss.NewStyle().Foreground(info),
		Banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle),
		LogBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1),
	}
}

// Reporter writes run progress and results to a single output stream.
type Reporter struct {
	out    io.Writer
	styles *styles
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out, styles: defaultStyles()}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// Discovery prints the classified fleet and any rejected candidates.
func (r *Reporter) Discovery(projects []discover.Project, rejected []discover.Rejected) {
	r.printf("%s\n", r.styles.Banner.Render("🚢 testfleet"))

	for _, rej := range rejected {
		r.printf("%s\n", r.styles.Warning.Render(
			fmt.Sprintf("⚠ skipping %s: %v", rej.Path, rej.Reason)))
	}

	if len(projects) == 0 {
		return
	}

	r.printf("%s\n", r.styles.Title.Render(fmt.Sprintf("Discovered %d projects:", len(projects))))
	for _, p := range projects {
		r.printf("  %s %s\n", p.Name, r.styles.Subtle.Render("("+p.Platform.String()+")"))
	}
}

// SkippedNoAdapter warns that a classified project has no runner adapter
// configured and will not be tested.
func (r *Reporter) SkippedNoAdapter(p discover.Project) {
	r.printf("%s\n", r.styles.Warning.Render(
		fmt.Sprintf("⚠ skipping %s: no runner adapter for platform %s", p.Name, p.Platform)))
}

// Dispatch announces the fan-out.
func (r *Reporter) Dispatch(count int, timeout time.Duration) {
	r.printf("\n%s\n\n", r.styles.Title.Render(
		fmt.Sprintf("Running %d test suites in parallel (deadline %s)...", count, timeout)))
}

// ExecutionStarted implements orchestrator.Events for plain console mode.
func (r *Reporter) ExecutionStarted(ex *orchestrator.Execution) {
	r.printf("%s %s\n", r.styles.Info.Render("●"), ex.Project.Name)
}

// ExecutionFinished implements orchestrator.Events for plain console mode.
func (r *Reporter) ExecutionFinished(ex *orchestrator.Execution) {
	switch ex.Status {
	case orchestrator.StatusSucceeded:
		r.printf("%s %s %s\n", r.styles.Success.Render("✓"), ex.Project.Name,
			r.styles.Subtle.Render(time.Since(ex.StartedAt).Round(time.Second).String()))
	case orchestrator.StatusFailed:
		r.printf("%s %s %s\n", r.styles.Failure.Render("✗"), ex.Project.Name,
			r.styles.Subtle.Render(fmt.Sprintf("exit %d", ex.ExitCode)))
	case orchestrator.StatusCancelled:
		r.printf("%s %s %s\n", r.styles.Warning.Render("○"), ex.Project.Name,
			r.styles.Subtle.Render("cancelled"))
	case orchestrator.StatusTimedOut:
		r.printf("%s %s %s\n", r.styles.Failure.Render("○"), ex.Project.Name,
			r.styles.Subtle.Render("timed out"))
	}
}

// Summary prints the final report. readLog fetches the captured output for
// one project path; it is only consulted for the triggering failure.
func (r *Reporter) Summary(res orchestrator.RunResult, readLog func(projectPath string) ([]byte, error)) {
	r.printf("\n")

	switch res.Outcome {
	case orchestrator.OutcomeNoProjects:
		r.printf("%s\n", r.styles.Subtle.Render("No testable projects found."))

	case orchestrator.OutcomeSuccess:
		if res.Interrupted {
			r.printf("%s\n", r.styles.Warning.Render("Run interrupted; remaining executions were cancelled."))
			return
		}
		r.printf("%s\n", r.styles.Success.Render(
			fmt.Sprintf("✓ All %d test suites passed in %s.",
				len(res.Executions), res.Elapsed.Round(time.Second))))

	case orchestrator.OutcomeFailure:
		if res.Trigger == nil {
			r.printf("%s\n", r.styles.Warning.Render("Run interrupted; remaining executions were cancelled."))
			return
		}
		r.printf("%s\n", r.styles.Failure.Render(
			fmt.Sprintf("✗ %s failed (exit %d).", res.Trigger.Project.Name, res.Trigger.ExitCode)))
		r.printLog(res.Trigger, readLog)
		if cancelled := countStatus(res.Executions, orchestrator.StatusCancelled); cancelled > 0 {
			r.printf("%s\n", r.styles.Warning.Render(
				fmt.Sprintf("%d remaining executions were cancelled.", cancelled)))
		}

	case orchestrator.OutcomeTimeout:
		timedOut := countStatus(res.Executions, orchestrator.StatusTimedOut)
		r.printf("%s\n", r.styles.Failure.Render(
			fmt.Sprintf("✗ Global deadline exceeded after %s; %d executions still running were terminated.",
				res.Elapsed.Round(time.Second), timedOut)))
	}
}

// printLog renders the triggering execution's full captured output.
func (r *Reporter) printLog(ex *orchestrator.Execution, readLog func(string) ([]byte, error)) {
	if readLog == nil {
		return
	}
	data, err := readLog(ex.Project.Path)
	if err != nil {
		r.printf("%s\n", r.styles.Subtle.Render(fmt.Sprintf("(log unavailable: %v)", err)))
		return
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		content = r.styles.Subtle.Render("(no output captured)")
	}
	r.printf("%s\n", r.styles.LogBox.Render(content))
}

// Doctor prints the adapter health check, one line per platform.
func (r *Reporter) Doctor(d doctor.Diagnosis) {
	r.printf("%s\n", r.styles.Banner.Render("🚢 testfleet doctor"))
	for _, a := range d.Adapters {
		if a.Available {
			r.printf("%s %-8s %s\n", r.styles.Success.Render("✓"), a.Platform,
				r.styles.Subtle.Render(a.Path))
			continue
		}
		r.printf("%s %-8s %s\n", r.styles.Failure.Render("✗"), a.Platform,
			r.styles.Subtle.Render(a.Detail))
	}
	if d.Healthy {
		r.printf("%s\n", r.styles.Success.Render("All adapters available."))
	}
}

func countStatus(execs []*orchestrator.Execution, s orchestrator.Status) int {
	n := 0
	for _, ex := range execs {
		if ex.Status == s {
			n++
		}
	}
	return n
}
