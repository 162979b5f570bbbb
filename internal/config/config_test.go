package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Roots) != 1 || cfg.Roots[0] != "." {
		t.Errorf("default roots = %v, want [.]", cfg.Roots)
	}
	if time.Duration(cfg.Timeout) != DefaultTimeout {
		t.Errorf("default timeout = %v, want %v", time.Duration(cfg.Timeout), DefaultTimeout)
	}
	if argv, ok := cfg.Adapters["js"]; !ok || argv[0] != "testfleet-run-js" {
		t.Errorf("default js adapter = %v, want [testfleet-run-js]", argv)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Adapters) == 0 {
		t.Error("expected default adapters for missing file")
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := strings.Join([]string{
		"roots:",
		"  - apps",
		"  - examples",
		"timeout: 90s",
		"adapters:",
		"  js: [scripts/run-js-tests.sh]",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Roots) != 2 || cfg.Roots[0] != "apps" || cfg.Roots[1] != "examples" {
		t.Errorf("roots = %v, want [apps examples]", cfg.Roots)
	}
	if time.Duration(cfg.Timeout) != 90*time.Second {
		t.Errorf("timeout = %v, want 90s", time.Duration(cfg.Timeout))
	}
	if argv := cfg.Adapters["js"]; len(argv) != 1 || argv[0] != "scripts/run-js-tests.sh" {
		t.Errorf("js adapter = %v", argv)
	}
	// Only js was configured; platforms without adapters are simply
	// unregistered and their projects get skipped at run time.
	if _, ok := cfg.Adapters["rust"]; ok {
		t.Error("rust adapter should not be present when config lists only js")
	}
}

func TestLoadRejectsUnknownPlatformTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("adapters:\n  cobol: [run-cobol]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown platform tag")
	}
}

func TestLoadRejectsEmptyAdapterCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("adapters:\n  js: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for empty adapter command")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	want := Default()
	want.Roots = []string{"apps"}
	want.Timeout = Duration(3 * time.Minute)

	if err := Write(path, want); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got.Roots[0] != "apps" {
		t.Errorf("roots = %v, want [apps]", got.Roots)
	}
	if time.Duration(got.Timeout) != 3*time.Minute {
		t.Errorf("timeout = %v, want 3m", time.Duration(got.Timeout))
	}
	if len(got.Adapters) != len(want.Adapters) {
		t.Errorf("adapters count = %d, want %d", len(got.Adapters), len(want.Adapters))
	}
}
