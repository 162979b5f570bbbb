package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ditto-examples/testfleet/internal/discover"
	"github.com/ditto-examples/testfleet/internal/orchestrator"
)

// DashboardRunner hosts the TUI for the duration of a run and bridges the
// orchestrator's events and output into it. It implements
// orchestrator.Events; its MirrorWriter plugs into the orchestrator's
// Mirror hook.
type DashboardRunner struct {
	model *Model
	mux   *Multiplexer
	rows  []*Row
	index map[string]int
}

func NewDashboardRunner(projects []discover.Project) *DashboardRunner {
	rows := make([]*Row, len(projects))
	index := make(map[string]int, len(projects))
	for i, p := range projects {
		rows[i] = NewRow(p.Name, p.Platform.String())
		index[p.Path] = i
	}

	model := NewModel(rows, nil)
	return &DashboardRunner{
		model: model,
		mux:   NewMultiplexer(rows, model),
		rows:  rows,
		index: index,
	}
}

// ExecutionStarted implements orchestrator.Events.
func (dr *DashboardRunner) ExecutionStarted(ex *orchestrator.Execution) {
	if i, ok := dr.index[ex.Project.Path]; ok {
		dr.model.SendStatus(i, ex.Status)
	}
}

// ExecutionFinished implements orchestrator.Events.
func (dr *DashboardRunner) ExecutionFinished(ex *orchestrator.Execution) {
	if i, ok := dr.index[ex.Project.Path]; ok {
		dr.model.SendStatus(i, ex.Status)
	}
}

// MirrorWriter returns the dashboard's log writer for a project. The
// orchestrator multi-writes each child's output to its sink and this writer.
func (dr *DashboardRunner) MirrorWriter(_ int, p discover.Project) io.Writer {
	if i, ok := dr.index[p.Path]; ok {
		return dr.mux.Writer(i)
	}
	return nil
}

// Run starts the TUI and invokes fn with a context that is cancelled when
// the user aborts. It returns after both fn and the TUI have finished.
func (dr *DashboardRunner) Run(ctx context.Context, fn func(ctx context.Context)) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	dr.model.cancel = cancel

	program := tea.NewProgram(dr.model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(runCtx)
		dr.mux.Flush()
		dr.model.SendDone()
	}()

	_, err := program.Run()
	// A quit before completion aborts the run; the monitor tears the
	// fleet down and fn returns.
	cancel()
	<-done
	return err
}
