package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ErrEngineNotFound reports a missing Lean launcher DLL. There is no
// fallback for this; the caller should surface it immediately.
var ErrEngineNotFound = errors.New("lean engine launcher not found")

// Runner invokes the Lean engine for one algorithm project.
type Runner struct {
	LauncherDir string // directory holding the launcher and its dependencies
	LauncherDLL string // path to QuantConnect.Lean.Launcher.dll
	DataDir     string // market data directory (the Lean writer's output root)
	ResultsDir  string // root for per-run result folders
}

// RunBacktest runs a backtest for the given algorithm project directory
// (which must contain a main.py) and returns the engine exit code.
func (r Runner) RunBacktest(ctx context.Context, projectPath string) (int, error) {
	project, err := filepath.Abs(projectPath)
	if err != nil {
		return -1, err
	}
	info, err := os.Stat(project)
	if err != nil || !info.IsDir() {
		return -1, fmt.Errorf("project directory not found: %s", project)
	}
	algorithmFile := filepath.Join(project, "main.py")
	if _, err := os.Stat(algorithmFile); err != nil {
		return -1, fmt.Errorf("no main.py found in %s: each algorithm project must have a main.py entry point", project)
	}
	if _, err := os.Stat(r.LauncherDLL); err != nil {
		return -1, fmt.Errorf("%w: %s", ErrEngineNotFound, r.LauncherDLL)
	}

	timestamp := time.Now().UTC().Format("20060102-150405")
	resultsDir := filepath.Join(r.ResultsDir, filepath.Base(project), timestamp)
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return -1, fmt.Errorf("create results dir: %w", err)
	}

	cfg, err := BuildBacktestConfig(algorithmFile, resultsDir, r.DataDir, r.LauncherDir, nil, nil)
	if err != nil {
		return -1, err
	}
	configPath, err := WriteConfig(cfg)
	if err != nil {
		return -1, err
	}
	defer os.Remove(configPath)

	slog.Info("running backtest",
		"project", filepath.Base(project),
		"algorithm", algorithmFile,
		"results", resultsDir,
		"config", configPath)

	cmd := exec.CommandContext(ctx, "dotnet", r.LauncherDLL, "--config", configPath)
	cmd.Dir = r.LauncherDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("run engine: %w", err)
	}
	return 0, nil
}
