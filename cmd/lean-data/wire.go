//go:build wireinject
// +build wireinject

package main

import (
	"lean-data/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds App (Config + provider + writer + engine) via Wire.
// Caller must call a.DP.Close() when done.
func InitializeApp() (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvidePacketSaver,
		app.ProvideBinanceProvider,
		app.ProvideLeanWriter,
		app.ProvideEngineRunner,
		wire.Struct(new(App), "Config", "DP", "Writer", "Engine"),
	)
	return nil, nil
}
