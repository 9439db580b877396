// Package targets assembles the runnable targets of a project from its
// parsed Makefile.
package targets

import (
	"fmt"

	"github.com/skelly-dev/makegraph/internal/makefile"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// Names with special meaning.
const (
	DependencyBuild = "^build" // the build target of every dependency project
	ServeTarget     = "serve"
	RunTarget       = "run"
)

// Commands an Invocation can name.
const (
	CommandMake  = "make"
	CommandWatch = "watch"
)

var buildEquivalent = map[string]bool{
	"build":   true,
	"compile": true,
	"all":     true,
}

// IsBuildEquivalent reports whether name is one of the build-like targets
// that depend on the dependency projects' builds.
func IsBuildEquivalent(name string) bool {
	return buildEquivalent[name]
}

// WatchSpec describes a watch-and-rerun loop around another target.
type WatchSpec struct {
	Projects          []string `json:"projects" yaml:"projects"`
	IncludeDependents bool     `json:"includeDependents" yaml:"includeDependents"`
	Initialize        bool     `json:"initialize" yaml:"initialize"` // run once before the first change
}

// Invocation tells the orchestrator how to run a target.
type Invocation struct {
	Command string     `json:"command" yaml:"command"`
	Cwd     string     `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Target  string     `json:"target" yaml:"target"`
	Watch   *WatchSpec `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// Metadata is descriptive only.
type Metadata struct {
	Description string `json:"description" yaml:"description"`
	Synthetic   bool   `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// TargetConfig is one assembled target.
type TargetConfig struct {
	Name       string     `json:"name" yaml:"name"`
	Invocation Invocation `json:"invocation" yaml:"invocation"`
	DependsOn  []string   `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Metadata   Metadata   `json:"metadata" yaml:"metadata"`
}

// Assemble builds the target configs of project in Makefile order. A
// synthetic serve target is appended when the project has a build-like
// target and a run target, unless the Makefile defines serve itself.
func Assemble(project workspace.Project, mf *makefile.Makefile) []TargetConfig {
	if mf == nil {
		return nil
	}

	out := make([]TargetConfig, 0, len(mf.Targets)+1)
	hasBuild := false
	for _, target := range mf.Targets {
		if IsBuildEquivalent(target.Name) {
			hasBuild = true
		}
		out = append(out, assembleTarget(project, mf, target))
	}

	if hasBuild && mf.HasTarget(RunTarget) && !mf.HasTarget(ServeTarget) {
		out = append(out, serveTarget(project))
	}
	return out
}

// Find returns the config named name.
func Find(configs []TargetConfig, name string) (TargetConfig, bool) {
	for _, config := range configs {
		if config.Name == name {
			return config, true
		}
	}
	return TargetConfig{}, false
}

// Names lists config names in order.
func Names(configs []TargetConfig) []string {
	names := make([]string, 0, len(configs))
	for _, config := range configs {
		names = append(names, config.Name)
	}
	return names
}

func assembleTarget(project workspace.Project, mf *makefile.Makefile, target makefile.Target) TargetConfig {
	var dependsOn []string
	seen := make(map[string]bool)
	add := func(dep string) {
		if seen[dep] {
			return
		}
		seen[dep] = true
		dependsOn = append(dependsOn, dep)
	}

	if IsBuildEquivalent(target.Name) {
		add(DependencyBuild)
	}
	for _, prereq := range target.Prerequisites {
		// Only peers that are targets; files are left to make.
		if prereq != target.Name && mf.HasTarget(prereq) {
			add(prereq)
		}
	}

	return TargetConfig{
		Name: target.Name,
		Invocation: Invocation{
			Command: CommandMake,
			Cwd:     project.Root,
			Target:  target.Name,
		},
		DependsOn: dependsOn,
		Metadata: Metadata{
			Description: fmt.Sprintf("make %s in %s", target.Name, project.Root),
		},
	}
}

func serveTarget(project workspace.Project) TargetConfig {
	return TargetConfig{
		Name: ServeTarget,
		Invocation: Invocation{
			Command: CommandWatch,
			Target:  RunTarget,
			Watch: &WatchSpec{
				Projects:          []string{project.Name},
				IncludeDependents: true,
				Initialize:        true,
			},
		},
		Metadata: Metadata{
			Description: fmt.Sprintf("run %s, then rerun it whenever %s or its dependencies change", RunTarget, project.Name),
			Synthetic:   true,
		},
	}
}
