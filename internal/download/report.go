package download

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// failedEntry records one symbol/interval pair that produced no output.
type failedEntry struct {
	Pair   string `json:"pair"`
	Reason string `json:"reason"`
}

// writeRunReport persists the outcome of the last run beside the data so a
// re-run can be scoped to what failed.
func writeRunReport(dataDir string, success []string, failed []failedEntry) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	if len(success) > 0 {
		p := filepath.Join(dataDir, ".lastrun.success.json")
		data, err := json.MarshalIndent(success, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "pairs", len(success))
	}
	if len(failed) > 0 {
		p := filepath.Join(dataDir, ".lastrun.failed.json")
		data, err := json.MarshalIndent(failed, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failed))
	}
	return nil
}

func appendUnique(list []string, pair string) []string {
	for _, p := range list {
		if p == pair {
			return list
		}
	}
	return append(list, pair)
}
