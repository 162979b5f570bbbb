// Package discover enumerates candidate project directories under a fixed,
// ordered list of root locations and classifies each one.
package discover

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ditto-examples/testfleet/internal/platform"
)

// Project is an independently testable unit found during discovery. Its
// identity is the absolute path; it is immutable after discovery.
type Project struct {
	// Name is the display name, derived from the directory basename.
	Name string
	// Path is the absolute project directory.
	Path string
	// Platform selects the runner adapter that handles this project.
	Platform platform.Platform
}

// Rejected records a candidate directory that was excluded with a warning
// (currently only unclassified directories; unreadable ones are skipped
// silently).
type Rejected struct {
	Path   string
	Reason error
}

// Discover walks each root in order and returns the classified projects one
// level below it, plus the candidates rejected for lacking a platform
// marker. Roots that cannot be read and directories that are hidden,
// underscore-prefixed, or empty are skipped without comment. Duplicate
// directories reachable from multiple roots are reported once, for the
// first root that finds them.
//
// Discovery is idempotent: os.ReadDir returns entries sorted by name, so an
// unchanged tree always yields the same projects in the same order.
func Discover(roots []string) ([]Project, []Rejected) {
	var projects []Project
	var rejected []Rejected
	seen := map[string]bool{}

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			// DiscoveryUnreadable: reduce the set, never abort.
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				continue
			}
			abs, err := filepath.Abs(filepath.Join(root, name))
			if err != nil {
				continue
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			if !plausibleProject(abs) {
				continue
			}

			p, err := platform.Classify(abs)
			if err != nil {
				if errors.Is(err, platform.ErrNoMarker) {
					rejected = append(rejected, Rejected{Path: abs, Reason: err})
				}
				continue
			}
			projects = append(projects, Project{Name: name, Path: abs, Platform: p})
		}
	}

	return projects, rejected
}

// plausibleProject reports whether dir holds at least one visible entry.
// Hidden and underscore-prefixed entries don't count, matching the
// candidate filter above, so placeholder directories are not project
// candidates.
func plausibleProject(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, ".") && !strings.HasPrefix(name, "_") {
			return true
		}
	}
	return false
}
