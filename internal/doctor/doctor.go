// Package doctor checks that every configured runner adapter can actually
// be spawned before a run is attempted.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ditto-examples/testfleet/internal/platform"
	"github.com/ditto-examples/testfleet/internal/registry"
)

// AdapterStatus is the health of one platform's runner adapter.
type AdapterStatus struct {
	Platform  platform.Platform
	Argv      []string
	Available bool
	// Path is the resolved executable location when available.
	Path string
	// Detail explains why the adapter is unavailable.
	Detail string
}

// Diagnosis is the full health check result.
type Diagnosis struct {
	Adapters []AdapterStatus
	Healthy  bool
}

// Diagnose resolves every registered adapter. The registry's tag order
// keeps the output stable.
func Diagnose(reg *registry.Registry) Diagnosis {
	d := Diagnosis{Healthy: true}
	for _, p := range reg.Platforms() {
		argv, err := reg.Lookup(p)
		if err != nil {
			continue
		}
		status := checkAdapter(p, argv)
		if !status.Available {
			d.Healthy = false
		}
		d.Adapters = append(d.Adapters, status)
	}
	return d
}

// checkAdapter resolves argv[0] either on PATH or, when it contains a path
// separator, directly on disk with an executable-bit check.
func checkAdapter(p platform.Platform, argv []string) AdapterStatus {
	status := AdapterStatus{Platform: p, Argv: argv}
	command := argv[0]

	if strings.ContainsRune(command, os.PathSeparator) {
		info, err := os.Stat(command)
		if err != nil {
			status.Detail = fmt.Sprintf("not found: %v", err)
			return status
		}
		if info.IsDir() {
			status.Detail = command + " is a directory"
			return status
		}
		if info.Mode().Perm()&0o111 == 0 {
			status.Detail = command + " is not executable"
			return status
		}
		status.Available = true
		status.Path = command
		return status
	}

	path, err := exec.LookPath(command)
	if err != nil {
		status.Detail = command + " not found on PATH"
		return status
	}
	status.Available = true
	status.Path = path
	return status
}
