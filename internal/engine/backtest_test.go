package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBacktestMissingProject(t *testing.T) {
	r := Runner{}
	_, err := r.RunBacktest(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project directory not found")
}

func TestRunBacktestMissingEntryPoint(t *testing.T) {
	project := t.TempDir()
	r := Runner{}
	_, err := r.RunBacktest(context.Background(), project)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.py")
}

func TestRunBacktestMissingEngine(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "main.py"), []byte("pass\n"), 0644))

	r := Runner{
		LauncherDir: t.TempDir(),
		LauncherDLL: filepath.Join(t.TempDir(), "QuantConnect.Lean.Launcher.dll"),
		DataDir:     t.TempDir(),
		ResultsDir:  t.TempDir(),
	}
	_, err := r.RunBacktest(context.Background(), project)
	assert.ErrorIs(t, err, ErrEngineNotFound)
}
