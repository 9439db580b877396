// Package config loads the optional workspace configuration file and the
// ignore file.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/skelly-dev/makegraph/internal/naming"
	"github.com/skelly-dev/makegraph/internal/toolchain"
)

const (
	FileName       = "makegraph.toml"
	IgnoreFileName = ".makegraphignore"
)

// Config is the workspace configuration.
type Config struct {
	DependencyCompiler string   `toml:"dependency_compiler"`
	MaxFilesPerProject int      `toml:"max_files_per_project"`
	ScanSources        bool     `toml:"scan_sources"`
	Jobs               int      `toml:"jobs"`
	GroupDirs          []string `toml:"group_dirs"`
	Ignore             []string `toml:"ignore"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DependencyCompiler: string(toolchain.ModeAuto),
		ScanSources:        true,
		GroupDirs:          append([]string(nil), naming.DefaultGroupDirs...),
	}
}

// Load reads makegraph.toml from workspaceRoot. A missing file yields the
// defaults; keys that are not set keep their default values.
func Load(workspaceRoot string) (Config, error) {
	cfg := Default()
	path := filepath.Join(workspaceRoot, FileName)

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys in %s: %s", FileName, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate checks value ranges and the compiler mode.
func (c Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if c.MaxFilesPerProject < 0 {
		return fmt.Errorf("max_files_per_project must be >= 0, got %d", c.MaxFilesPerProject)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", c.Jobs)
	}
	return nil
}

// Mode returns the configured dependency compiler mode.
func (c Config) Mode() (toolchain.Mode, error) {
	return toolchain.ParseMode(c.DependencyCompiler)
}

// Namer returns the project namer for the configured group directories.
func (c Config) Namer() naming.Namer {
	return naming.NewNamer(c.GroupDirs)
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", FileName, err)
	}
	return buf.Bytes(), nil
}

// LoadIgnoreRules reads .makegraphignore from rootPath, skipping blank lines
// and comments. A missing file yields no rules.
func LoadIgnoreRules(rootPath string) ([]string, error) {
	ignorePath := filepath.Join(rootPath, IgnoreFileName)
	f, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IgnoreFileName, err)
	}

	return rules, nil
}
