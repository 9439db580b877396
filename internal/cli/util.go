package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skelly-dev/makegraph/internal/config"
	"github.com/skelly-dev/makegraph/internal/ctxlog"
	"github.com/skelly-dev/makegraph/internal/ignore"
	"github.com/skelly-dev/makegraph/internal/include"
	"github.com/skelly-dev/makegraph/internal/languages"
	"github.com/skelly-dev/makegraph/internal/source"
	"github.com/skelly-dev/makegraph/internal/toolchain"
	"github.com/skelly-dev/makegraph/internal/workspace"
)

// Replaced in tests so compiler mode runs without a real toolchain.
var (
	lookPath       toolchain.LookPathFunc = exec.LookPath
	compilerRunner toolchain.Runner       = toolchain.ExecRunner
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveRoot returns the absolute workspace root named by args, or the
// working directory.
func resolveRoot(args []string) (string, error) {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return "", err
	}
	if len(args) > 0 && args[0] != "" {
		rootPath = args[0]
	}

	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rootPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to open workspace: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// commandContext attaches a stderr logger at the --log-level level.
func commandContext(cmd *cobra.Command) (context.Context, error) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	levelName, err := OptionalStringFlag(cmd, "log-level")
	if err != nil {
		return nil, err
	}
	level, ok := ctxlog.ParseLevel(levelName)
	if !ok {
		return nil, fmt.Errorf("unsupported log level %q (supported: debug, info, warn, error)", levelName)
	}
	return ctxlog.WithLogger(ctx, ctxlog.NewTextLogger(os.Stderr, level)), nil
}

// session is a discovered workspace plus its effective configuration.
type session struct {
	Root     string
	Config   config.Config
	Matcher  *ignore.Matcher
	Registry *source.Registry
	Set      *workspace.Set
}

func openWorkspace(ctx context.Context, cmd *cobra.Command, args []string) (*session, error) {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(rootPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyConfigOverrides(cmd, &cfg); err != nil {
		return nil, err
	}

	ignoreRules, err := config.LoadIgnoreRules(rootPath)
	if err != nil {
		return nil, err
	}
	rules := append(append([]string(nil), cfg.Ignore...), ignoreRules...)
	matcher := ignore.NewMatcher(rules)

	set, issues, err := workspace.Discover(ctx, rootPath, cfg.Namer(), ignore.NewDiscoveryMatcher(rules))
	if err != nil {
		return nil, err
	}
	ReportScanIssues(ctx, issues)

	return &session{
		Root:     rootPath,
		Config:   cfg,
		Matcher:  matcher,
		Registry: languages.NewDefaultRegistry(),
		Set:      set,
	}, nil
}

// strategies resolves the configured compiler mode. A missing explicit
// compiler is returned as a *toolchain.ConfigError.
func (s *session) strategies() ([]include.Strategy, toolchain.Selection, error) {
	mode, err := s.Config.Mode()
	if err != nil {
		return nil, toolchain.Selection{}, err
	}
	return include.StrategiesFor(include.Options{
		Mode:        mode,
		MaxFiles:    s.Config.MaxFilesPerProject,
		Jobs:        s.Config.Jobs,
		ScanSources: s.Config.ScanSources,
		Matcher:     s.Matcher,
		Registry:    s.Registry,
		LookPath:    lookPath,
		Runner:      compilerRunner,
	})
}

func ReportScanIssues(ctx context.Context, issues []source.Issue) {
	logger := ctxlog.FromContext(ctx)
	for _, issue := range issues {
		logger.Debug("skipped file",
			"file", issue.File,
			"language", issue.Language,
			"severity", issue.Severity,
			"reason", issue.Message,
		)
	}
}
