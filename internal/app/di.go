package app

import (
	"lean-data/internal/engine"
	"lean-data/internal/lean"
	"lean-data/internal/provider"
	"lean-data/internal/saver"
)

// ProvideConfig loads and validates config from the environment (for Wire).
func ProvideConfig() (*Config, error) {
	return LoadConfig()
}

// ProvidePacketSaver creates the raw packet saver from config (for Wire).
// A nil saver (empty format) disables the raw dump.
func ProvidePacketSaver(cfg *Config) saver.PacketSaver {
	if cfg.RawFormat == "" {
		return nil
	}
	return saver.NewPacketSaver(cfg.RawFormat)
}

// ProvideBinanceProvider creates and wires the Binance provider with the
// packet saver (for Wire). Caller must Close it when shutting down.
func ProvideBinanceProvider(cfg *Config, ps saver.PacketSaver) *provider.BinanceProvider {
	p := provider.NewBinanceProvider(cfg.UseFutures())
	if ps != nil {
		p.SetRawPacketDir(cfg.RawDir)
		p.SetPacketSaver(ps)
	}
	return p
}

// ProvideLeanWriter creates the Lean writer rooted at the data dir (for Wire).
func ProvideLeanWriter(cfg *Config) *lean.Writer {
	return lean.NewWriter(cfg.DataDir)
}

// ProvideEngineRunner creates the backtest runner (for Wire).
func ProvideEngineRunner(cfg *Config) engine.Runner {
	return engine.Runner{
		LauncherDir: cfg.LauncherDir,
		LauncherDLL: cfg.LauncherDLL(),
		DataDir:     cfg.DataDir,
		ResultsDir:  cfg.ResultsDir,
	}
}
