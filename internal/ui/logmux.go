package ui

import (
	"io"
	"sync"
	"time"
)

// Multiplexer fans adapter output into the dashboard, one line-buffering
// writer per execution. Writers timestamp each complete line and forward it
// to the row and the model.
type Multiplexer struct {
	mu      sync.Mutex
	rows    []*Row
	model   *Model
	writers map[int]*rowWriter
}

func NewMultiplexer(rows []*Row, model *Model) *Multiplexer {
	return &Multiplexer{
		rows:    rows,
		model:   model,
		writers: make(map[int]*rowWriter),
	}
}

// Writer returns the log writer for the execution at index.
func (mx *Multiplexer) Writer(index int) io.Writer {
	mx.mu.Lock()
	defer mx.mu.Unlock()

	if w, ok := mx.writers[index]; ok {
		return w
	}
	w := &rowWriter{mux: mx, index: index, buf: make([]byte, 0, 4096)}
	mx.writers[index] = w
	return w
}

// Flush forwards any partial final lines. Call once after the run ends.
func (mx *Multiplexer) Flush() {
	mx.mu.Lock()
	defer mx.mu.Unlock()
	for _, w := range mx.writers {
		w.flush()
	}
}

func (mx *Multiplexer) appendLine(index int, line string) {
	if index < 0 || index >= len(mx.rows) {
		return
	}
	stamped := "[" + time.Now().Format("15:04:05") + "] " + line
	if mx.model != nil {
		mx.model.SendLog(index, stamped)
	} else {
		mx.rows[index].AppendLog(stamped)
	}
}

// rowWriter buffers raw adapter output and emits it line by line.
type rowWriter struct {
	mux   *Multiplexer
	index int
	mu    sync.Mutex
	buf   []byte
}

func (w *rowWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		nl := -1
		for i, b := range w.buf {
			if b == '\n' {
				nl = i
				break
			}
		}
		if nl < 0 {
			break
		}
		line := string(w.buf[:nl])
		w.buf = w.buf[nl+1:]
		if line != "" {
			w.mux.appendLine(w.index, line)
		}
	}
	return len(p), nil
}

func (w *rowWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		line := string(w.buf)
		w.buf = w.buf[:0]
		w.mux.appendLine(w.index, line)
	}
}
