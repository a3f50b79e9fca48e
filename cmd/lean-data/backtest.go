package main

import (
	"context"
	"flag"
	"log/slog"

	"lean-data/internal/slogx"

	"github.com/google/subcommands"
)

// backtestCmd runs the Lean engine for one algorithm project.
type backtestCmd struct{}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "run a Lean backtest for an algorithm project" }
func (*backtestCmd) Usage() string {
	return `backtest <project-dir>:
  Run the Lean engine against the project's main.py using the workspace data directory.
`
}

func (*backtestCmd) SetFlags(*flag.FlagSet) {}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		slog.Error("usage: backtest <project-dir>")
		return subcommands.ExitUsageError
	}

	a, err := InitializeApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.DP.Close()
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))

	code, err := a.Engine.RunBacktest(ctx, f.Arg(0))
	if err != nil {
		slog.Error("backtest failed", "error", err)
		return subcommands.ExitFailure
	}
	if code != 0 {
		slog.Error("engine exited with non-zero code", "code", code)
		return subcommands.ExitFailure
	}
	slog.Info("backtest complete")
	return subcommands.ExitSuccess
}
