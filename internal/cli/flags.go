package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/config"
	"github.com/skelly-dev/makegraph/internal/output"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

// ExplicitIntFlag returns the flag value and whether it was set explicitly.
func ExplicitIntFlag(cmd *cobra.Command, name string) (int, bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return 0, false, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, true, nil
}

func ParseOutputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := OptionalStringFlag(cmd, "format")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// ApplyConfigOverrides folds --compiler, --max-files and --jobs into cfg.
func ApplyConfigOverrides(cmd *cobra.Command, cfg *config.Config) error {
	compiler, err := OptionalStringFlag(cmd, "compiler")
	if err != nil {
		return err
	}
	if compiler != "" {
		cfg.DependencyCompiler = compiler
	}

	maxFiles, set, err := ExplicitIntFlag(cmd, "max-files")
	if err != nil {
		return err
	}
	if set {
		cfg.MaxFilesPerProject = maxFiles
	}

	jobs, set, err := ExplicitIntFlag(cmd, "jobs")
	if err != nil {
		return err
	}
	if set {
		cfg.Jobs = jobs
	}

	return cfg.Validate()
}
