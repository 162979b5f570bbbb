// Package config holds the fixed run configuration: the ordered root
// locations to discover under, the platform→adapter mapping, and the global
// deadline. A .testfleet.yaml file is the single customization point;
// everything defaults to compiled-in values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ditto-examples/testfleet/internal/platform"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".testfleet.yaml"

// DefaultTimeout is the global deadline for a whole run, measured from the
// moment the first execution is spawned.
const DefaultTimeout = 10 * time.Minute

// Duration wraps time.Duration so YAML can carry values like "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the YAML shape of .testfleet.yaml.
type Config struct {
	// Roots is the ordered list of locations whose immediate
	// subdirectories are project candidates.
	Roots []string `yaml:"roots"`
	// Timeout is the global run deadline.
	Timeout Duration `yaml:"timeout,omitempty"`
	// Adapters maps a platform tag to the runner adapter argv. The
	// project path is appended as the final argument when spawning.
	Adapters map[string][]string `yaml:"adapters"`
}

// Default returns the compiled-in configuration: discover directly under
// the working directory and expect a testfleet-run-<platform> adapter on
// PATH for every known platform.
func Default() Config {
	adapters := make(map[string][]string, len(platform.All()))
	for _, p := range platform.All() {
		adapters[p.String()] = []string{"testfleet-run-" + p.String()}
	}
	return Config{
		Roots:    []string{"."},
		Timeout:  Duration(DefaultTimeout),
		Adapters: adapters,
	}
}

// Load reads the configuration at path. A missing file is not an error: the
// defaults apply. Fields left empty in the file fall back to their
// defaults; adapter tags must name known platforms.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	def := Default()
	if len(cfg.Roots) == 0 {
		cfg.Roots = def.Roots
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if len(cfg.Adapters) == 0 {
		cfg.Adapters = def.Adapters
	}

	for tag, argv := range cfg.Adapters {
		if _, err := platform.ParseTag(tag); err != nil {
			return Config{}, fmt.Errorf("invalid configuration: %w", err)
		}
		if len(argv) == 0 {
			return Config{}, fmt.Errorf("invalid configuration: empty adapter command for %q", tag)
		}
	}

	return cfg, nil
}

// Write writes cfg as a YAML file.
func Write(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	return err
}
