package logsink

import (
	"os"
	"strings"
	"testing"
)

func TestCollectorRoundTrip(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector() error: %v", err)
	}
	defer c.Close()

	sink, err := c.Open("/tmp/proj-a")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := sink.Write([]byte("hello\nworld\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := c.ReadLog("/tmp/proj-a")
	if err != nil {
		t.Fatalf("ReadLog() error: %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Errorf("ReadLog() = %q", got)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	a, _ := c.Open("/tmp/proj")
	b, _ := c.Open("/tmp/proj")
	if a != b {
		t.Error("Open() returned distinct sinks for the same project")
	}
}

func TestReadLogUnknownProject(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.ReadLog("/tmp/never-opened"); err == nil {
		t.Error("expected error for unknown project")
	}
}

func TestSinkCapsOutput(t *testing.T) {
	c, err := newCollector(16)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	sink, err := c.Open("/tmp/chatty")
	if err != nil {
		t.Fatal(err)
	}

	// Writes never fail and always report full consumption so the child
	// pipe keeps draining.
	for i := 0; i < 10; i++ {
		n, err := sink.Write([]byte("0123456789"))
		if err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		if n != 10 {
			t.Fatalf("Write() = %d, want 10", n)
		}
	}

	got, err := c.ReadLog("/tmp/chatty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(got), "[log truncated]\n") {
		t.Errorf("expected truncation marker, got %q", got)
	}
	if len(got) > 16+len("\n[log truncated]\n") {
		t.Errorf("log grew past the cap: %d bytes", len(got))
	}
}

func TestCloseRemovesCaptureDirectory(t *testing.T) {
	c, err := NewCollector()
	if err != nil {
		t.Fatal(err)
	}
	sink, _ := c.Open("/tmp/p")
	dir := c.dir

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("capture directory %s still exists", dir)
	}

	// Writes after close are swallowed, not errors.
	if _, err := sink.Write([]byte("late")); err != nil {
		t.Errorf("post-close Write() error: %v", err)
	}
}
