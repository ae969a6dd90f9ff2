package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecords_YAML(t *testing.T) {
	path := writeFile(t, "records.yaml", `
- id: "1"
  first_name: Hodoug
  last_name: Joung
  account_number: 0012345678
- id: "2"
  first_name: Ana
  middle_name: K
  last_name: Lee
  account_number: "1234567890"
`)

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0012345678", records[0].AccountNumber)
	assert.Equal(t, &ports.Record{ID: "2", FirstName: "Ana", MiddleName: "K", LastName: "Lee", AccountNumber: "1234567890"}, records[1])
}

func TestReadRecords_JSON(t *testing.T) {
	path := writeFile(t, "records.json", `[{"id":"7","first_name":"A","last_name":"B","account_number":"1234567890"}]`)

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "7", records[0].ID)
}

func TestReadRecords_MissingID(t *testing.T) {
	path := writeFile(t, "records.yaml", "- first_name: A\n")

	_, err := ReadRecords(path)
	assert.ErrorContains(t, err, "has no id")
}

func TestSeedRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.WithSeed(transport.DefaultRecord()))
	records := []*ports.Record{
		{ID: "1", FirstName: "Other", LastName: "Name", AccountNumber: "1"},
		{ID: "2", FirstName: "Ana", LastName: "Lee", AccountNumber: "1234567890"},
	}

	written, err := SeedRecords(ctx, store, records, false)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	kept, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Hodoug", kept.FirstName)

	written, err = SeedRecords(ctx, store, records, true)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	replaced, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Other", replaced.FirstName)
}
