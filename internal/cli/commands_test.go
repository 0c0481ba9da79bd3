package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/okian/racebet/internal/adapters/repository"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a YAML config pointing at a fresh history file.
func writeConfig(t *testing.T, driver string) (cfgPath, storePath string) {
	t.Helper()
	dir := t.TempDir()
	storePath = filepath.Join(dir, "history."+driver)
	cfgPath = filepath.Join(dir, "racebet.yaml")
	body := fmt.Sprintf("store:\n  driver: %s\n  path: %s\n", driver, storePath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, storePath
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRecordAndRecommend(t *testing.T) {
	cfg, storePath := writeConfig(t, repository.DriverCSV)

	code, out, _ := run(t, "--config", cfg, "record", "2", "4", "1", "3")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Recorded game 1 round 1: 2-4-1-3")

	code, out, _ = run(t, "--config", cfg, "record", "--game", "1", "1", "2", "3", "4")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "game 1 round 2")

	code, _, _ = run(t, "--config", cfg, "record", "--game", "1", "2", "4", "1", "3")
	require.Equal(t, ExitSuccess, code)

	loaded, err := repository.NewCSVStore(storePath).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())
	assert.Equal(t, 3, loaded.At(2).Round)

	code, out, _ = run(t, "--config", cfg, "--format", "json", "recommend")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			CompetitorID int    `json:"competitor_id"`
			Name         string `json:"name"`
			Label        string `json:"label"`
			Source       string `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.CompetitorID)
	assert.Equal(t, "Recommended Bet: Zergling", resp.Data.Label)
	assert.Equal(t, "sequence", resp.Data.Source)

	code, out, _ = run(t, "--config", cfg, "patterns")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "2-4-1-3")

	code, out, _ = run(t, "--config", cfg, "heatmap")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Zergling")
}

func TestRecordRejectsInvalidPositions(t *testing.T) {
	cfg, storePath := writeConfig(t, repository.DriverCSV)

	code, _, errOut := run(t, "--config", cfg, "record", "1", "1", "2", "3")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, errOut, ErrCodeInput)

	code, _, _ = run(t, "--config", cfg, "record", "1", "x", "2", "3")
	assert.Equal(t, ExitFailure, code)

	loaded, err := repository.NewCSVStore(storePath).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestSimulateIsReproducible(t *testing.T) {
	cfgA, pathA := writeConfig(t, repository.DriverSQLite)
	cfgB, pathB := writeConfig(t, repository.DriverSQLite)

	for _, cfg := range []string{cfgA, cfgB} {
		code, out, errOut := run(t, "--config", cfg, "simulate", "--games", "3", "--rounds", "4", "--seed", "99")
		require.Equal(t, ExitSuccess, code, errOut)
		assert.Contains(t, out, "history holds 12 races")
	}

	a := loadRows(t, repository.DriverSQLite, pathA)
	b := loadRows(t, repository.DriverSQLite, pathB)
	require.Len(t, a, 12)
	assert.Equal(t, a, b)
	assert.Equal(t, model.GameID(3), a[11].Game)

	code, out, _ := run(t, "--config", cfgA, "--format", "json", "simulate", "--games", "1", "--rounds", "2", "--seed", "5")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"first_game":4`)
	assert.Len(t, loadRows(t, repository.DriverSQLite, pathA), 14)
}

func TestInvalidInvocation(t *testing.T) {
	cfg, _ := writeConfig(t, repository.DriverCSV)

	code, _, errOut := run(t, "--config", cfg, "--format", "xml", "recommend")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, ErrCodeUsage)

	code, out, _ := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--format", "json", "recommend")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, out, ErrCodeConfig)

	code, _, _ = run(t, "--config", cfg, "simulate", "--games", "0", "--seed", "1")
	assert.Equal(t, ExitCommandError, code)
}

func loadRows(t *testing.T, driver, path string) []model.RaceResult {
	t.Helper()
	store, err := repository.Open(driver, path)
	require.NoError(t, err)
	defer store.Close()
	table, err := store.Load(context.Background())
	require.NoError(t, err)
	return table.Rows()
}
