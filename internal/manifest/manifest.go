// Package manifest models the backend feature-flag surface: named build-time
// flags that each enable a combination of optional dependency features.
// Flags marked as backends select which BLAS provider the build links
// against; at most one backend may be selected.
package manifest

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed gantry.toml
var defaultFS embed.FS

// Manifest declares the feature flags a build may select.
type Manifest struct {
	Package Package `toml:"package"`

	// Features maps a flag name to the entries it enables. An entry naming
	// another flag of this manifest is expanded transitively; an entry of
	// the form "dep/feature" is a terminal dependency feature.
	Features map[string][]string `toml:"features"`

	// Backends lists the feature flags that link a BLAS backend. These are
	// mutually exclusive; selecting none is the no-backend build.
	Backends []string `toml:"backends"`
}

// Package carries manifest metadata.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Load reads a manifest from the given TOML file.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Default returns the built-in manifest shipped with gantry.
// The embedded file is validated at build time by the package tests, so a
// decode failure here is a programming error.
func Default() *Manifest {
	data, err := defaultFS.ReadFile("gantry.toml")
	if err != nil {
		panic(fmt.Sprintf("embedded manifest missing: %v", err))
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("embedded manifest invalid: %v", err))
	}
	return &m
}

// check validates internal consistency: every backend must be a declared
// flag, and every non-terminal entry must resolve to a declared flag.
func (m *Manifest) check() error {
	for _, b := range m.Backends {
		if _, ok := m.Features[b]; !ok {
			return fmt.Errorf("backend %q is not a declared feature", b)
		}
	}
	for flag, entries := range m.Features {
		for _, e := range entries {
			if strings.Contains(e, "/") {
				continue // dependency feature, terminal
			}
			if _, ok := m.Features[e]; !ok {
				return fmt.Errorf("feature %q references undeclared feature %q", flag, e)
			}
		}
	}
	return nil
}

// Flags returns all declared flag names, sorted.
func (m *Manifest) Flags() []string {
	flags := make([]string, 0, len(m.Features))
	for name := range m.Features {
		flags = append(flags, name)
	}
	sort.Strings(flags)
	return flags
}

// IsBackend reports whether the flag links a BLAS backend.
func (m *Manifest) IsBackend(flag string) bool {
	for _, b := range m.Backends {
		if b == flag {
			return true
		}
	}
	return false
}

// Resolve expands the selected flags to the full enabled set: every flag
// reached transitively plus every terminal dependency feature, deduplicated
// and sorted. Selecting more than one backend flag is an error; selecting
// none is the no-backend build.
func (m *Manifest) Resolve(selected []string) ([]string, error) {
	seen := make(map[string]bool, len(selected))
	var backends []string
	for _, flag := range selected {
		if _, ok := m.Features[flag]; !ok {
			return nil, fmt.Errorf("unknown feature flag %q", flag)
		}
		if seen[flag] {
			continue
		}
		seen[flag] = true
		if m.IsBackend(flag) {
			backends = append(backends, flag)
		}
	}
	// Exclusivity is between distinct backends; a repeated selection of the
	// same backend is just a duplicate.
	if len(backends) > 1 {
		sort.Strings(backends)
		return nil, fmt.Errorf("backend features are mutually exclusive: %s", strings.Join(backends, ", "))
	}

	enabled := make(map[string]bool)
	queue := append([]string(nil), selected...)
	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]
		if enabled[entry] {
			continue
		}
		enabled[entry] = true
		if strings.Contains(entry, "/") {
			continue
		}
		queue = append(queue, m.Features[entry]...)
	}

	result := make([]string, 0, len(enabled))
	for e := range enabled {
		result = append(result, e)
	}
	sort.Strings(result)
	return result, nil
}

// Backend returns the backend flag among selected, or "" for a no-backend
// build. The error mirrors Resolve's exclusivity check.
func (m *Manifest) Backend(selected []string) (string, error) {
	seen := make(map[string]bool, len(selected))
	var backends []string
	for _, flag := range selected {
		if seen[flag] {
			continue
		}
		seen[flag] = true
		if m.IsBackend(flag) {
			backends = append(backends, flag)
		}
	}
	switch len(backends) {
	case 0:
		return "", nil
	case 1:
		return backends[0], nil
	default:
		sort.Strings(backends)
		return "", fmt.Errorf("backend features are mutually exclusive: %s", strings.Join(backends, ", "))
	}
}
