package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"lean-data/internal/slogx"

	"github.com/google/subcommands"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&downloadCmd{}, "data")
	subcommands.Register(&backtestCmd{}, "engine")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
