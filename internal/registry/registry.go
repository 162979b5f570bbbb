// Package registry maps platforms to their external runner adapters.
package registry

import (
	"errors"
	"sort"

	"github.com/ditto-examples/testfleet/internal/config"
	"github.com/ditto-examples/testfleet/internal/platform"
)

// ErrNoAdapter is returned by Lookup when a platform has no registered
// runner adapter. The caller skips the project with a warning; this is
// never fatal for the run.
var ErrNoAdapter = errors.New("no runner adapter registered")

// Registry resolves a platform to the argv of its runner adapter. The
// adapter contract is deliberately thin: an executable that takes the
// project path as its single appended argument and exits 0 on success.
type Registry struct {
	adapters map[platform.Platform][]string
}

// FromConfig builds a registry from the adapters section of the
// configuration. Tags were validated at load time; a parse failure here
// still surfaces rather than being masked.
func FromConfig(cfg config.Config) (*Registry, error) {
	adapters := make(map[platform.Platform][]string, len(cfg.Adapters))
	for tag, argv := range cfg.Adapters {
		p, err := platform.ParseTag(tag)
		if err != nil {
			return nil, err
		}
		adapters[p] = argv
	}
	return &Registry{adapters: adapters}, nil
}

// Lookup returns the adapter argv for p, or ErrNoAdapter.
func (r *Registry) Lookup(p platform.Platform) ([]string, error) {
	argv, ok := r.adapters[p]
	if !ok {
		return nil, ErrNoAdapter
	}
	return argv, nil
}

// Platforms returns the registered platforms in tag order.
func (r *Registry) Platforms() []platform.Platform {
	out := make([]platform.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
