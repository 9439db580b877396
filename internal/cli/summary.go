package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/toolchain"
)

type RunSummary struct {
	Mode             string              `json:"mode"`
	Format           string              `json:"format,omitempty"`
	RootPath         string              `json:"root_path"`
	OutputFile       string              `json:"output_file,omitempty"`
	Strategy         string              `json:"strategy,omitempty"`
	Full             bool                `json:"full"`
	Projects         int                 `json:"projects"`
	Scanned          int                 `json:"scanned"`
	Reused           int                 `json:"reused"`
	Dependencies     int                 `json:"dependencies"`
	Dropped          int                 `json:"dropped"`
	Changed          int                 `json:"changed"`
	Removed          int                 `json:"removed"`
	Impacted         int                 `json:"impacted"`
	Cycles           int                 `json:"cycles,omitempty"`
	DurationMS       int64               `json:"duration_ms"`
	ChangedProjects  []string            `json:"changed_projects,omitempty"`
	RemovedProjects  []string            `json:"removed_projects,omitempty"`
	ImpactedProjects []string            `json:"impacted_projects,omitempty"`
	Reasons          map[string][]string `json:"reasons,omitempty"`
}

type DoctorSummary struct {
	Mode        string                 `json:"mode"`
	RootPath    string                 `json:"root_path"`
	Healthy     bool                   `json:"healthy"`
	Configured  string                 `json:"configured_compiler"`
	Selection   *toolchain.Selection   `json:"selection,omitempty"`
	Toolchain   []toolchain.Capability `json:"toolchain"`
	Projects    int                    `json:"projects"`
	Collisions  map[string][]string    `json:"collisions,omitempty"`
	Cycles      [][]string             `json:"cycles,omitempty"`
	MostUsed    []string               `json:"most_depended_on,omitempty"`
	StateFound  bool                   `json:"state_found"`
	Clean       bool                   `json:"clean"`
	Changed     int                    `json:"changed"`
	Removed     int                    `json:"removed"`
	Stale       []string               `json:"stale_outputs,omitempty"`
	Missing     []string               `json:"missing,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	fmt.Fprintf(w,
		"%s: projects=%d scanned=%d reused=%d dependencies=%d dropped=%d changed=%d removed=%d impacted=%d duration=%dms\n",
		summary.Mode,
		summary.Projects,
		summary.Scanned,
		summary.Reused,
		summary.Dependencies,
		summary.Dropped,
		summary.Changed,
		summary.Removed,
		summary.Impacted,
		summary.DurationMS,
	)
	if summary.Strategy != "" {
		pass := "incremental"
		if summary.Full {
			pass = "full"
		}
		fmt.Fprintf(w, "strategy: %s (%s pass)\n", summary.Strategy, pass)
	}
	if summary.OutputFile != "" {
		fmt.Fprintf(w, "output: %s (%s)\n", summary.OutputFile, summary.Format)
	}
	if summary.Cycles > 0 {
		fmt.Fprintf(w, "cycles: %d\n", summary.Cycles)
	}

	if len(summary.ChangedProjects) > 0 {
		fmt.Fprintf(w, "changed projects (%d): %s\n", len(summary.ChangedProjects), SummarizePaths(summary.ChangedProjects, 8))
	}
	if len(summary.RemovedProjects) > 0 {
		fmt.Fprintf(w, "removed projects (%d): %s\n", len(summary.RemovedProjects), SummarizePaths(summary.RemovedProjects, 8))
	}
	if len(summary.ImpactedProjects) > 0 {
		fmt.Fprintf(w, "impacted projects (%d): %s\n", len(summary.ImpactedProjects), SummarizePaths(summary.ImpactedProjects, 8))
	}
	if len(summary.Reasons) > 0 {
		for _, name := range summary.ImpactedProjects {
			reasons := summary.Reasons[name]
			if len(reasons) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s <- %s\n", name, strings.Join(reasons, "; "))
		}
	}

	return nil
}

func PrintDoctorSummary(w io.Writer, summary DoctorSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	status := bad("issues")
	if summary.Healthy {
		status = ok("ok")
	}
	fmt.Fprintf(w, "doctor: %s\n", status)

	selected := "lexical scan"
	if summary.Selection != nil && summary.Selection.UsesCompiler() {
		selected = fmt.Sprintf("%s (%s)", summary.Selection.Compiler, summary.Selection.Path)
	}
	if summary.Selection == nil {
		selected = bad("unavailable")
	}
	fmt.Fprintf(w, "compiler: configured=%s selected=%s\n", summary.Configured, selected)
	for _, capability := range summary.Toolchain {
		mark := ok("found")
		if !capability.Available {
			mark = dim("not found")
		}
		fmt.Fprintf(w, "  %s: %s\n", capability.Compiler, mark)
	}

	fmt.Fprintf(w, "projects: %d\n", summary.Projects)
	for _, name := range fileutil.MapKeysSorted(summary.Collisions) {
		fmt.Fprintf(w, "  %s name %q shared by %s\n", warn("collision:"), name, strings.Join(summary.Collisions[name], ", "))
	}
	for _, cycle := range summary.Cycles {
		fmt.Fprintf(w, "  %s %s\n", warn("cycle:"), strings.Join(cycle, " -> "))
	}
	if len(summary.MostUsed) > 0 {
		fmt.Fprintf(w, "most depended on: %s\n", strings.Join(summary.MostUsed, ", "))
	}

	if summary.StateFound {
		fmt.Fprintf(w, "state: clean=%t changed=%d removed=%d\n", summary.Clean, summary.Changed, summary.Removed)
	}
	if len(summary.Stale) > 0 {
		fmt.Fprintf(w, "stale outputs (%d): %s\n", len(summary.Stale), SummarizePaths(summary.Stale, 5))
	}
	if len(summary.Missing) > 0 {
		fmt.Fprintf(w, "missing (%d): %s\n", len(summary.Missing), strings.Join(summary.Missing, ", "))
	}
	for _, suggestion := range summary.Suggestions {
		fmt.Fprintf(w, "next: %s\n", suggestion)
	}
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
