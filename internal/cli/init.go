package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/config"
	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/nav"
)

// RunInit writes makegraph.toml with the default settings. An existing file
// is kept unless --force is given.
func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	force, err := nav.OptionalBoolFlag(cmd, "force", false)
	if err != nil {
		return err
	}

	data, err := config.Encode(config.Default())
	if err != nil {
		return err
	}

	configPath := filepath.Join(rootPath, config.FileName)
	if force {
		if err := fileutil.WriteIfChanged(configPath, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.FileName, err)
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	}

	wrote, err := fileutil.WriteIfMissing(configPath, data, 0644)
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Printf("%s already exists (use --force to overwrite)\n", configPath)
		return nil
	}
	fmt.Printf("Wrote %s\n", configPath)
	return nil
}
