package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skelly-dev/makegraph/internal/config"
	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/fileutil"
	"github.com/skelly-dev/makegraph/internal/output"
	"github.com/skelly-dev/makegraph/internal/source"
	"github.com/skelly-dev/makegraph/internal/state"
	"github.com/skelly-dev/makegraph/internal/toolchain"
)

func IsCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// loadState reads the previous run's state. A corrupt file is reported and
// replaced by an empty state so the next pass is a full one.
func loadState(rootPath string) (*state.State, error) {
	st, err := state.Load(rootPath)
	if err != nil {
		if IsCorruptStateError(err) {
			fmt.Fprintf(os.Stderr, "warning: corrupt state file detected (%v); rescanning every project\n", err)
			return state.NewState(), nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return st, nil
}

// projectFingerprints hashes each project's Makefile and scannable sources.
// Projects sharing a name get one combined fingerprint.
func projectFingerprints(ctx context.Context, s *session) map[string]string {
	byName := make(map[string]map[string]string)
	for _, project := range s.Set.Projects() {
		files, issues := source.ProjectFiles(project.Dir, source.WalkOptions{
			WorkspaceRoot: s.Root,
			Matcher:       s.Matcher,
			Accept:        s.Registry.Supports,
		})
		ReportScanIssues(ctx, issues)
		files = append(files, filepath.Base(project.Makefile))

		if byName[project.Name] == nil {
			byName[project.Name] = make(map[string]string)
		}
		byName[project.Name][project.Root] = fileutil.Fingerprint(fileutil.ScanFileHashes(project.Dir, files))
	}

	fingerprints := make(map[string]string, len(byName))
	for name, roots := range byName {
		if len(roots) == 1 {
			for _, fingerprint := range roots {
				fingerprints[name] = fingerprint
			}
			continue
		}
		fingerprints[name] = fileutil.Fingerprint(roots)
	}
	return fingerprints
}

// strategyKey identifies the settings the stored edges were computed with.
// A different key forces a full pass.
func strategyKey(selection toolchain.Selection, cfg config.Config) string {
	scanner := "lexical"
	if selection.UsesCompiler() {
		scanner = selection.Compiler
	}
	return fmt.Sprintf("%s/%s scan_sources=%t max_files=%d group_dirs=%s",
		selection.Mode,
		scanner,
		cfg.ScanSources,
		cfg.MaxFilesPerProject,
		strings.Join(cfg.GroupDirs, ","),
	)
}

// writeDocument prints data to stdout, or writes it to outPath when set.
// It returns the path written (empty for stdout) and whether the file
// content changed.
func writeDocument(outPath string, data []byte) (string, bool, error) {
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return "", false, err
	}

	abs, err := filepath.Abs(outPath)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %s: %w", outPath, err)
	}
	wrote, err := fileutil.WriteIfChangedTracked(abs, data)
	if err != nil {
		return "", false, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return abs, wrote, nil
}

// outputKey is the state key for an output file: root-relative when the
// file lives inside the workspace.
func outputKey(rootPath, outPath string) string {
	rel, err := filepath.Rel(rootPath, outPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(outPath)
	}
	return filepath.ToSlash(rel)
}

// staleOutputs lists recorded output files that are missing or were edited
// since they were written.
func staleOutputs(rootPath string, st *state.State) []string {
	var stale []string
	for _, key := range fileutil.MapKeysSorted(st.OutputHashes) {
		path := filepath.FromSlash(key)
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootPath, path)
		}
		hash, err := fileutil.HashFile(path)
		if err != nil {
			stale = append(stale, key)
			continue
		}
		if recorded, _ := st.GetOutputHash(key); recorded != hash {
			stale = append(stale, key)
		}
	}
	return stale
}

// emitDocument encodes doc in the --format format and writes it per --out,
// recording the output hash in st when a file was written.
func emitDocument(ctx context.Context, rootPath string, doc output.Document, format output.Format, outPath string, st *state.State) (string, error) {
	data, err := output.Encode(doc, format)
	if err != nil {
		return "", err
	}
	written, wrote, err := writeDocument(outPath, data)
	if err != nil {
		return "", err
	}
	if written != "" && st != nil {
		st.SetOutputHash(outputKey(rootPath, written), fileutil.HashBytes(data))
		ctxlog.FromContext(ctx).Debug("wrote document", "file", written, "changed", wrote)
	}
	return written, nil
}
