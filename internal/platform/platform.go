// Package platform classifies project directories by the marker artifacts
// they contain. Classification is pure: the same directory always yields
// the same platform, and each project belongs to exactly one platform.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Platform is the closed set of project platforms testfleet knows how to
// hand off to a runner adapter. Adding one means a new constant, a tag
// entry, and a marker rule; nothing downstream is string-typed.
type Platform int

const (
	Unknown Platform = iota
	Flutter
	JS
	Swift
	Kotlin
	CSharp
	Cpp
	Rust
	Python
)

// ErrNoMarker is returned by Classify when a directory matches no marker
// rule. Callers treat this as "not a testable project", never as fatal.
var ErrNoMarker = errors.New("no platform marker found")

// tags maps each platform to its stable configuration tag.
var tags = map[Platform]string{
	Flutter: "flutter",
	JS:      "js",
	Swift:   "swift",
	Kotlin:  "kotlin",
	CSharp:  "csharp",
	Cpp:     "cpp",
	Rust:    "rust",
	Python:  "python",
}

// String returns the platform's configuration tag.
func (p Platform) String() string {
	if tag, ok := tags[p]; ok {
		return tag
	}
	return "unknown"
}

// ParseTag resolves a configuration tag back to its platform.
func ParseTag(tag string) (Platform, error) {
	for p, t := range tags {
		if t == strings.ToLower(strings.TrimSpace(tag)) {
			return p, nil
		}
	}
	return Unknown, errors.New("unknown platform tag: " + tag)
}

// All returns every known platform in marker-priority order.
func All() []Platform {
	out := make([]Platform, 0, len(markerRules))
	seen := map[Platform]bool{}
	for _, r := range markerRules {
		if !seen[r.platform] {
			seen[r.platform] = true
			out = append(out, r.platform)
		}
	}
	return out
}

// markerRule ties a marker predicate to the platform it signals.
type markerRule struct {
	// marker is the human-readable artifact name, used in diagnostics.
	marker   string
	match    func(dir string) bool
	platform Platform
}

// markerRules is evaluated top to bottom; the first match wins.
// pubspec.yaml is checked before package.json because Flutter web samples
// carry both.
var markerRules = []markerRule{
	{"pubspec.yaml", hasFile("pubspec.yaml"), Flutter},
	{"package.json", hasFile("package.json"), JS},
	{"Package.swift", anyOf(hasFile("Package.swift"), hasExt(".xcodeproj")), Swift},
	{"build.gradle", anyOf(hasFile("build.gradle"), hasFile("build.gradle.kts"), hasFile("settings.gradle"), hasFile("settings.gradle.kts")), Kotlin},
	{"*.csproj", anyOf(hasExt(".csproj"), hasExt(".sln")), CSharp},
	{"CMakeLists.txt", hasFile("CMakeLists.txt"), Cpp},
	{"Cargo.toml", hasFile("Cargo.toml"), Rust},
	{"pyproject.toml", anyOf(hasFile("pyproject.toml"), hasFile("requirements.txt")), Python},
}

// Classify inspects dir for marker artifacts and returns the first matching
// platform. It never modifies the directory and holds no state, so repeated
// calls on an unchanged directory return the same result.
func Classify(dir string) (Platform, error) {
	for _, r := range markerRules {
		if r.match(dir) {
			return r.platform, nil
		}
	}
	return Unknown, ErrNoMarker
}

func hasFile(name string) func(string) bool {
	return func(dir string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && !info.IsDir()
	}
}

// hasExt matches any direct entry with the given extension. Directories
// count too: an .xcodeproj bundle is a directory.
func hasExt(ext string) func(string) bool {
	return func(dir string) bool {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ext {
				return true
			}
		}
		return false
	}
}

func anyOf(preds ...func(string) bool) func(string) bool {
	return func(dir string) bool {
		for _, p := range preds {
			if p(dir) {
				return true
			}
		}
		return false
	}
}
