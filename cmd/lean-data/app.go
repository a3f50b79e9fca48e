package main

import (
	"lean-data/internal/app"
	"lean-data/internal/engine"
	"lean-data/internal/lean"
	"lean-data/internal/provider"
)

// App holds application dependencies built by Wire.
type App struct {
	Config *app.Config
	DP     *provider.BinanceProvider
	Writer *lean.Writer
	Engine engine.Runner
}
