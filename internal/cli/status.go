package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/nav"
)

func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}
	asJSON, err := nav.OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}

	s, err := openWorkspace(ctx, cmd, args)
	if err != nil {
		return err
	}
	st, err := loadState(s.Root)
	if err != nil {
		return err
	}

	fingerprints := projectFingerprints(ctx, s)
	changed := st.ChangedProjects(fingerprints)
	removed := st.RemovedProjects(fileutil.ToSet(s.Set.Names()))
	impacted, reasons := st.ImpactedProjects(changed, removed)

	summary := RunSummary{
		Mode:             "status",
		RootPath:         s.Root,
		Strategy:         st.Strategy,
		Projects:         s.Set.Len(),
		Scanned:          len(fingerprints),
		Reused:           max(len(fingerprints)-len(impacted), 0),
		Dependencies:     len(st.Dependencies()),
		Changed:          len(changed),
		Removed:          len(removed),
		Impacted:         len(impacted),
		DurationMS:       time.Since(start).Milliseconds(),
		ChangedProjects:  changed,
		RemovedProjects:  removed,
		ImpactedProjects: impacted,
		Reasons:          reasons,
	}

	return PrintRunSummary(os.Stdout, summary, asJSON)
}
