package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mkProject creates a temp directory containing the given files (regular,
// empty) and dirs.
func mkProject(t *testing.T, files []string, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", f, err)
		}
	}
	for _, d := range dirs {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return root
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		dirs  []string
		want  Platform
	}{
		{"flutter", []string{"pubspec.yaml"}, nil, Flutter},
		{"js", []string{"package.json"}, nil, JS},
		{"swift package", []string{"Package.swift"}, nil, Swift},
		{"xcode project", nil, []string{"Sample.xcodeproj"}, Swift},
		{"kotlin gradle", []string{"build.gradle"}, nil, Kotlin},
		{"kotlin gradle kts", []string{"build.gradle.kts"}, nil, Kotlin},
		{"csharp", []string{"Sample.csproj"}, nil, CSharp},
		{"cpp", []string{"CMakeLists.txt"}, nil, Cpp},
		{"rust", []string{"Cargo.toml"}, nil, Rust},
		{"python pyproject", []string{"pyproject.toml"}, nil, Python},
		{"python requirements", []string{"requirements.txt"}, nil, Python},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := mkProject(t, tt.files, tt.dirs...)
			got, err := Classify(dir)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyNoMarker(t *testing.T) {
	dir := mkProject(t, []string{"README.md"})
	_, err := Classify(dir)
	if !errors.Is(err, ErrNoMarker) {
		t.Errorf("Classify() error = %v, want ErrNoMarker", err)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A Flutter web sample carries both pubspec.yaml and package.json;
	// pubspec.yaml is listed first and must win.
	dir := mkProject(t, []string{"pubspec.yaml", "package.json"})
	got, err := Classify(dir)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if got != Flutter {
		t.Errorf("Classify() = %v, want Flutter (marker priority)", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	dir := mkProject(t, []string{"Cargo.toml"})
	first, err := Classify(dir)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := Classify(dir)
		if err != nil || got != first {
			t.Fatalf("repeat %d: Classify() = %v, %v; want %v, nil", i, got, err, first)
		}
	}
}

func TestParseTagRoundTrip(t *testing.T) {
	for _, p := range All() {
		got, err := ParseTag(p.String())
		if err != nil {
			t.Fatalf("ParseTag(%q) error: %v", p.String(), err)
		}
		if got != p {
			t.Errorf("ParseTag(%q) = %v, want %v", p.String(), got, p)
		}
	}

	if _, err := ParseTag("cobol"); err == nil {
		t.Error("ParseTag(\"cobol\") expected error, got nil")
	}
}
