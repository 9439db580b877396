package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/skelly-dev/makegraph/internal/depmap"
)

const (
	Dir                 = ".makegraph"
	StateFile           = "state.json"
	CurrentStateVersion = "1"
)

// ProjectState tracks the last dependency pass over one project
type ProjectState struct {
	Root         string              `json:"root"`
	Fingerprint  string              `json:"fingerprint"`
	Dependencies []depmap.Dependency `json:"dependencies,omitempty"` // outgoing edges
	UpdatedAt    time.Time           `json:"updated_at"`
}

// State is the CLI's record of the previous dependency pass. The engine
// itself never reads it.
type State struct {
	Version      string                  `json:"version"`
	Strategy     string                  `json:"strategy,omitempty"` // mode and compiler used for the stored edges
	UpdatedAt    time.Time               `json:"updated_at"`
	Projects     map[string]ProjectState `json:"projects"`
	OutputHashes map[string]string       `json:"output_hashes,omitempty"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Version:      CurrentStateVersion,
		Projects:     make(map[string]ProjectState),
		OutputHashes: make(map[string]string),
	}
}

// Path returns the state file location under workspaceRoot.
func Path(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, Dir, StateFile)
}

// Load reads the state of workspaceRoot. A missing file yields an empty
// state.
func Load(workspaceRoot string) (*State, error) {
	data, err := os.ReadFile(Path(workspaceRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	migrateState(&state)

	return &state, nil
}

// Save writes the state of workspaceRoot.
func (s *State) Save(workspaceRoot string) error {
	if s.Version == "" {
		s.Version = CurrentStateVersion
	}
	if s.Projects == nil {
		s.Projects = make(map[string]ProjectState)
	}
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}

	s.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	path := Path(workspaceRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetProject records the fingerprint and outgoing edges of a project.
func (s *State) SetProject(name, root, fingerprint string, deps []depmap.Dependency) {
	s.Projects[name] = ProjectState{
		Root:         root,
		Fingerprint:  fingerprint,
		Dependencies: deps,
		UpdatedAt:    time.Now(),
	}
}

// RemoveProject removes a project from state tracking
func (s *State) RemoveProject(name string) {
	delete(s.Projects, name)
}

// HasChanged returns true if the fingerprint differs from stored
func (s *State) HasChanged(name, fingerprint string) bool {
	stored, ok := s.Projects[name]
	if !ok {
		return true // New project
	}
	return stored.Fingerprint != fingerprint
}

// ChangedProjects returns new or modified projects, sorted.
func (s *State) ChangedProjects(fingerprints map[string]string) []string {
	changed := make([]string, 0)
	for name, fingerprint := range fingerprints {
		if s.HasChanged(name, fingerprint) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// RemovedProjects returns tracked projects that no longer exist, sorted.
func (s *State) RemovedProjects(current map[string]bool) []string {
	removed := make([]string, 0)
	for name := range s.Projects {
		if !current[name] {
			removed = append(removed, name)
		}
	}
	sort.Strings(removed)
	return removed
}

// Dependencies returns every stored edge, sorted.
func (s *State) Dependencies() []depmap.Dependency {
	var out []depmap.Dependency
	for _, project := range s.Projects {
		out = append(out, project.Dependencies...)
	}
	depmap.Sort(out)
	return out
}

// ImpactedProjects returns changed and removed projects plus every project
// that depends on them through the stored edges, with the reason each one
// was pulled in.
func (s *State) ImpactedProjects(changed, removed []string) ([]string, map[string][]string) {
	reverse := make(map[string][]string)
	for name, project := range s.Projects {
		for _, dep := range project.Dependencies {
			reverse[dep.Target] = append(reverse[dep.Target], name)
		}
	}
	for name := range reverse {
		sort.Strings(reverse[name])
	}

	impacted := make(map[string]bool)
	reasons := make(map[string][]string)
	queue := make([]string, 0, len(changed)+len(removed))
	for _, name := range changed {
		if !impacted[name] {
			impacted[name] = true
			reasons[name] = appendReason(reasons[name], "changed")
			queue = append(queue, name)
		}
	}
	for _, name := range removed {
		if !impacted[name] {
			impacted[name] = true
			reasons[name] = appendReason(reasons[name], "removed")
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dependent := range reverse[name] {
			reasons[dependent] = appendReason(reasons[dependent], "depends on "+name)
			if impacted[dependent] {
				continue
			}
			impacted[dependent] = true
			queue = append(queue, dependent)
		}
	}

	out := make([]string, 0, len(impacted))
	for name := range impacted {
		out = append(out, name)
		sort.Strings(reasons[name])
	}
	sort.Strings(out)
	return out, reasons
}

// SetOutputHash records the content hash for a generated output file.
func (s *State) SetOutputHash(path, hash string) {
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}
	s.OutputHashes[path] = hash
}

// GetOutputHash returns the previously stored hash for a generated output file.
func (s *State) GetOutputHash(path string) (string, bool) {
	hash, ok := s.OutputHashes[path]
	return hash, ok
}

func appendReason(existing []string, reason string) []string {
	for _, item := range existing {
		if item == reason {
			return existing
		}
	}
	return append(existing, reason)
}

func migrateState(s *State) {
	if s.Projects == nil {
		s.Projects = make(map[string]ProjectState)
	}
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}

	switch s.Version {
	case "":
		s.Version = CurrentStateVersion
	case CurrentStateVersion:
		// no-op
	default:
		// Unknown versions are kept; callers compare Version before reusing edges.
	}
}
