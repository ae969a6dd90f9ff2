package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRecipientStoreContract(t, store)
}

func TestMemoryStore_Seed(t *testing.T) {
	seed := &ports.Record{ID: "1", FirstName: "Hodoug", LastName: "Joung", AccountNumber: "12345678901234"}
	store := memory.NewStore(memory.WithSeed(seed))
	seed.FirstName = "changed after seeding"

	rec, err := store.Load(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Hodoug", rec.FirstName)
}

func TestMemoryStore_SaveRequiresID(t *testing.T) {
	store := memory.NewStore()
	assert.Error(t, store.Save(context.Background(), &ports.Record{}))
	assert.Error(t, store.Save(context.Background(), nil))
}
