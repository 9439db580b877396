// Package toolchain locates the C compiler used for preprocessor-assisted
// dependency scanning and runs its dependency-listing mode.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Mode selects how source-level dependencies are discovered.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeGCC    Mode = "gcc"
	ModeClang  Mode = "clang"
	ModeManual Mode = "manual"
)

// Compilers lists the supported compilers in auto-mode preference order.
var Compilers = []string{string(ModeGCC), string(ModeClang)}

// ParseMode validates a configured mode. The empty string means auto.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeGCC:
		return ModeGCC, nil
	case ModeClang:
		return ModeClang, nil
	case ModeManual:
		return ModeManual, nil
	default:
		return "", fmt.Errorf("unsupported dependency compiler %q (supported: gcc, clang, manual, auto)", value)
	}
}

// ErrToolchainMissing is wrapped by every ConfigError.
var ErrToolchainMissing = errors.New("toolchain not available")

// ConfigError is the one failure that aborts a dependency pass: an
// explicitly selected compiler is not installed.
type ConfigError struct {
	Compiler string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("dependency compiler %q is not available", e.Compiler)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + fmt.Sprintf(" (install %s, or set dependency_compiler = \"manual\" in makegraph.toml to use the lexical include scan)", e.Compiler)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolchainMissing}
	}
	return []error{ErrToolchainMissing, e.Err}
}

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Capability describes whether one compiler can be used.
type Capability struct {
	Compiler  string `json:"compiler"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Selection is the outcome of resolving a Mode against the system.
type Selection struct {
	Mode     Mode   `json:"mode"`
	Compiler string `json:"compiler,omitempty"` // empty for the lexical scan
	Path     string `json:"path,omitempty"`
}

// UsesCompiler reports whether the selection runs a compiler.
func (s Selection) UsesCompiler() bool {
	return s.Compiler != ""
}

// Probe reports the availability of every supported compiler.
func Probe() map[string]Capability {
	return ProbeWithLookPath(exec.LookPath)
}

// ProbeWithLookPath is Probe with an injectable lookup.
func ProbeWithLookPath(lookPath LookPathFunc) map[string]Capability {
	capabilities := make(map[string]Capability, len(Compilers))
	for _, compiler := range Compilers {
		capability := Capability{Compiler: compiler}
		if path, err := lookPath(compiler); err == nil {
			capability.Available = true
			capability.Path = path
		} else {
			capability.Reason = "compiler_not_found"
		}
		capabilities[compiler] = capability
	}
	return capabilities
}

// Resolve turns a mode into a concrete selection. An explicit gcc or clang
// that cannot be found is a *ConfigError; auto falls back to the lexical
// scan silently.
func Resolve(mode Mode, lookPath LookPathFunc) (Selection, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch mode {
	case ModeManual:
		return Selection{Mode: ModeManual}, nil
	case ModeGCC, ModeClang:
		path, err := lookPath(string(mode))
		if err != nil {
			return Selection{}, &ConfigError{Compiler: string(mode), Err: err}
		}
		return Selection{Mode: mode, Compiler: string(mode), Path: path}, nil
	case ModeAuto, "":
		capabilities := ProbeWithLookPath(lookPath)
		for _, compiler := range Compilers {
			if capability := capabilities[compiler]; capability.Available {
				return Selection{Mode: ModeAuto, Compiler: compiler, Path: capability.Path}, nil
			}
		}
		return Selection{Mode: ModeAuto}, nil
	default:
		_, err := ParseMode(string(mode))
		return Selection{}, err
	}
}

// SortedCapabilities returns capabilities ordered by compiler name.
func SortedCapabilities(capabilities map[string]Capability) []Capability {
	out := make([]Capability, 0, len(capabilities))
	for _, capability := range capabilities {
		out = append(out, capability)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Compiler < out[j].Compiler
	})
	return out
}
