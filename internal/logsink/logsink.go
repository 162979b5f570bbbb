// Package logsink captures the combined stdout/stderr of child executions.
// Each execution gets its own append-only file in a per-run temp directory;
// the files exist only for the lifetime of the run and are deleted when the
// collector closes.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxBytes caps how much output a single execution may accumulate.
// Past the cap the sink keeps consuming writes but discards the bytes, so a
// chatty child never blocks on a full pipe.
const DefaultMaxBytes = 64 << 20

const truncationMarker = "\n[log truncated]\n"

// Sink is the capture target for one execution. It is safe for a single
// writer; exec.Cmd uses one goroutine per file descriptor but stdout and
// stderr share this writer, so writes are serialized.
type Sink struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	written int64
	max     int64
	closed  bool
}

// Write implements io.Writer. Writes past the cap are swallowed after a
// single truncation marker; the child keeps running undisturbed.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return len(p), nil
	}
	if s.written >= s.max {
		return len(p), nil
	}

	remaining := s.max - s.written
	if int64(len(p)) <= remaining {
		n, err := s.file.Write(p)
		s.written += int64(n)
		return len(p), err
	}

	n, err := s.file.Write(p[:remaining])
	s.written += int64(n)
	if err == nil {
		_, err = s.file.WriteString(truncationMarker)
		s.written = s.max
	}
	return len(p), err
}

// Path returns the location of the sink file on disk.
func (s *Sink) Path() string { return s.path }

func (s *Sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// Collector owns the per-run capture directory and the sinks inside it.
type Collector struct {
	mu    sync.Mutex
	dir   string
	sinks map[string]*Sink
	max   int64
}

// NewCollector creates the capture directory under the system temp dir.
func NewCollector() (*Collector, error) {
	return newCollector(DefaultMaxBytes)
}

func newCollector(maxBytes int64) (*Collector, error) {
	dir, err := os.MkdirTemp("", "testfleet-*")
	if err != nil {
		return nil, fmt.Errorf("creating capture directory: %w", err)
	}
	return &Collector{
		dir:   dir,
		sinks: make(map[string]*Sink),
		max:   maxBytes,
	}, nil
}

// Open creates the sink for the project at path. Opening the same project
// twice returns the existing sink.
func (c *Collector) Open(projectPath string) (*Sink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sinks[projectPath]; ok {
		return s, nil
	}

	name := uuid.NewString() + ".log"
	f, err := os.Create(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating log sink: %w", err)
	}

	s := &Sink{file: f, path: f.Name(), max: c.max}
	c.sinks[projectPath] = s
	return s, nil
}

// ReadLog returns the captured output for the project at path. Call after
// the execution has finished; partial reads during a run see whatever has
// been flushed so far.
func (c *Collector) ReadLog(projectPath string) ([]byte, error) {
	c.mu.Lock()
	s, ok := c.sinks[projectPath]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no log sink for %s", projectPath)
	}
	return os.ReadFile(s.path)
}

// Close closes every sink and removes the capture directory.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, s := range c.sinks {
		if err := s.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := os.RemoveAll(c.dir); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
