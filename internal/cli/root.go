package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/nav"
	"github.com/skelly-dev/makegraph/internal/output"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "makegraph",
		Short: "Derive a project/task graph from a tree of Makefiles",
		Long: `makegraph discovers every directory holding a Makefile, turns each one
into a project with typed targets, and infers cross-project dependency
edges from -I flags, #include directives, and (when gcc or clang is
installed) the compiler's -MM dependency listing.

The graph is printed as json, yaml, or jsonl for a build orchestrator to
consume. Incremental state is kept in .makegraph/.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug|info|warn|error")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default makegraph.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing makegraph.toml")

	nodesCmd := &cobra.Command{
		Use:   "nodes [path]",
		Short: "Print one node per project with its targets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunNodes,
	}
	addDocumentFlags(nodesCmd)
	nodesCmd.Flags().Int("jobs", 0, "Concurrent Makefile reads (default: number of CPUs)")

	depsCmd := &cobra.Command{
		Use:   "deps [path]",
		Short: "Infer cross-project dependency edges",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDeps,
	}
	addDocumentFlags(depsCmd)
	addScanFlags(depsCmd)
	depsCmd.Flags().Bool("incremental", false, "Rescan only projects that changed since the last run")
	depsCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	graphCmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print nodes, dependency edges, and cycles together",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGraph,
	}
	addDocumentFlags(graphCmd)
	addScanFlags(graphCmd)
	graphCmd.Flags().Bool("incremental", false, "Rescan only projects that changed since the last run")
	graphCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	statusCmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show which projects changed and what deps would rescan",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunStatus,
	}
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	doctorCmd := &cobra.Command{
		Use:   "doctor [path]",
		Short: "Check the toolchain, project names, and dependency cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDoctor,
	}
	addScanFlags(doctorCmd)
	doctorCmd.Flags().Bool("json", false, "Print machine-readable doctor output")

	// Navigate Commands
	dependenciesCmd := &cobra.Command{
		Use:   "dependencies <project>",
		Short: "Show the projects a project depends on",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunDependencies,
	}
	dependenciesCmd.Flags().Bool("json", false, "Print machine-readable dependency results")

	dependentsCmd := &cobra.Command{
		Use:   "dependents <project>",
		Short: "Show the projects that depend on a project",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunDependents,
	}
	dependentsCmd.Flags().Bool("json", false, "Print machine-readable dependent results")
	dependentsCmd.Flags().Bool("transitive", false, "Include indirect dependents")

	traceCmd := &cobra.Command{
		Use:   "trace <project>",
		Short: "Trace outgoing dependencies from a project up to depth N",
		Args:  cobra.ExactArgs(1),
		RunE:  nav.RunTrace,
	}
	traceCmd.Flags().Int("depth", 2, "Traversal depth (>=1)")
	traceCmd.Flags().Bool("json", false, "Print machine-readable trace results")

	pathCmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Find the shortest dependency path between two projects",
		Args:  cobra.ExactArgs(2),
		RunE:  nav.RunPath,
	}
	pathCmd.Flags().Bool("json", false, "Print machine-readable path results")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("makegraph %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		nodesCmd,
		depsCmd,
		graphCmd,
		statusCmd,
		doctorCmd,
		dependenciesCmd,
		dependentsCmd,
		traceCmd,
		pathCmd,
		versionCmd,
	)

	return rootCmd
}

func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(output.FormatJSON), "Output format: json|yaml|jsonl")
	cmd.Flags().StringP("out", "o", "", "Write the document to this file instead of stdout")
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("compiler", "", "Dependency compiler: auto|gcc|clang|manual (overrides makegraph.toml)")
	cmd.Flags().Int("max-files", 0, "Cap on source files passed to the compiler per project, 0 = unlimited")
	cmd.Flags().Int("jobs", 0, "Concurrent compiler invocations (default: number of CPUs)")
}
