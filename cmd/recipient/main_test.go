package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/recipient/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSeedAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "recipient.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level: error
store:
  driver: loam
  loam:
    dir: `+filepath.Join(dir, "records")+`
`), 0o644))

	recordsPath := filepath.Join(dir, "records.yaml")
	require.NoError(t, os.WriteFile(recordsPath, []byte(`
- id: "2"
  first_name: Ana
  last_name: Lee
  account_number: "0012345678"
`), 0o644))

	assert.Contains(t, run(t, "--config", cfgPath, "seed", recordsPath), "seeded 1 of 1 records")

	var rec ports.Record
	require.NoError(t, json.Unmarshal([]byte(run(t, "--config", cfgPath, "show", "2")), &rec))
	assert.Equal(t, "Ana", rec.FirstName)
	assert.Equal(t, "******5678", rec.AccountNumber)

	require.NoError(t, json.Unmarshal([]byte(run(t, "--config", cfgPath, "show", "--reveal", "2")), &rec))
	assert.Equal(t, "0012345678", rec.AccountNumber)

	var ids []string
	require.NoError(t, json.Unmarshal([]byte(run(t, "--config", cfgPath, "show")), &ids))
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestVersion(t *testing.T) {
	assert.Contains(t, run(t, "version"), "recipient version")
}
