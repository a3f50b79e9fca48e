// Package engine generates the Lean launcher configuration and runs
// backtests through the engine process, bypassing the Lean CLI and its
// authentication requirements.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// backtestingEnvironment is the handler set for a file-system backtest.
var backtestingEnvironment = map[string]any{
	"live-mode":            false,
	"setup-handler":        "QuantConnect.Lean.Engine.Setup.ConsoleSetupHandler",
	"result-handler":       "QuantConnect.Lean.Engine.Results.BacktestingResultHandler",
	"data-feed-handler":    "QuantConnect.Lean.Engine.DataFeeds.FileSystemDataFeed",
	"real-time-handler":    "QuantConnect.Lean.Engine.RealTime.BacktestingRealTimeHandler",
	"transaction-handler":  "QuantConnect.Lean.Engine.TransactionHandlers.BacktestingTransactionHandler",
	"history-provider":     "QuantConnect.Lean.Engine.HistoricalData.SubscriptionDataReaderHistoryProvider",
}

// baseConfig returns the static part of the engine config.
func baseConfig() map[string]any {
	return map[string]any{
		"environment":          "backtesting",
		"algorithm-language":   "Python",
		"close-automatically":  true,
		"log-handler":          "QuantConnect.Logging.CompositeLogHandler",
		"messaging-handler":    "QuantConnect.Messaging.Messaging",
		"job-queue-handler":    "QuantConnect.Queues.JobQueue",
		"api-handler":          "QuantConnect.Api.Api",
		"map-file-provider":    "QuantConnect.Data.Auxiliary.LocalDiskMapFileProvider",
		"factor-file-provider": "QuantConnect.Data.Auxiliary.LocalDiskFactorFileProvider",
		"data-provider":        "QuantConnect.Lean.Engine.DataFeeds.DefaultDataProvider",
		"job-user-id":          "0",
		"api-access-token":     "",
		"environments": map[string]any{
			"backtesting": backtestingEnvironment,
		},
	}
}

// BuildBacktestConfig assembles a complete engine config for one Python
// algorithm. dataDir must be the directory the Lean writer produced.
func BuildBacktestConfig(algorithmFile, resultsDir, dataDir, launcherDir string, extraPythonPaths []string, parameters map[string]string) (map[string]any, error) {
	abs, err := filepath.Abs(algorithmFile)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("algorithm file not found: %s", abs)
	}
	if filepath.Ext(abs) != ".py" {
		return nil, fmt.Errorf("expected a .py file, got: %s", abs)
	}

	moduleName := strings.TrimSuffix(filepath.Base(abs), ".py")
	pythonPaths := append([]string{filepath.Dir(abs)}, extraPythonPaths...)

	cfg := baseConfig()
	cfg["algorithm-type-name"] = moduleName
	cfg["algorithm-location"] = abs
	cfg["data-folder"] = dataDir
	cfg["results-destination-folder"] = resultsDir
	cfg["object-store-root"] = filepath.Join(resultsDir, "storage")
	cfg["composer-dll-directory"] = launcherDir
	cfg["python-additional-paths"] = pythonPaths
	if len(parameters) > 0 {
		cfg["parameters"] = parameters
	}
	return cfg, nil
}

// WriteConfig writes the config to a temporary JSON file and returns its
// path. The caller removes it after the engine exits.
func WriteConfig(cfg map[string]any) (string, error) {
	f, err := os.CreateTemp("", "lp-config-*.json")
	if err != nil {
		return "", err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	err = enc.Encode(cfg)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
