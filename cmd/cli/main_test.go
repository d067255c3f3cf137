package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"der-reliability/internal/engine"
	"der-reliability/internal/model"
)

func sampleResults() []*engine.Result {
	return []*engine.Result{
		{Configuration: model.NoDER, Years: 40, Rounds: 1, Converged: true,
			Indices: model.Indices{AIF: 1, AID: 10, AENS: 12, AEFG: 8748, AIFNoDER: 1, AIDNoDER: 10, AENSNoDER: 12, AEFGNoDER: 8748}},
		{Configuration: model.PVOnly, Years: 40, Rounds: 1, Converged: true,
			Indices: model.Indices{AIF: 1, AID: 10, AENS: 12, AEFG: 7000, AIFNoDER: 1, AIDNoDER: 10, AENSNoDER: 12, AEFGNoDER: 8748}},
	}
}

func TestWrite_CSVCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "indices.csv")
	require.NoError(t, write(path, false, sampleResults()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "configuration", rows[0][0])
	assert.Equal(t, "no_der", rows[1][0])
	assert.Equal(t, "pv_only", rows[2][0])
}

func TestWrite_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indices.json")
	require.NoError(t, write(path, true, sampleResults()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw), string(raw))
	assert.Contains(t, string(raw), `"pv_only"`)
}

func TestWrite_ReportsCreateFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := write(filepath.Join(blocker, "indices.csv"), false, sampleResults())
	assert.Error(t, err)
}
