package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecipientStoreContract runs a suite of tests to verify that a RecipientStore
// implementation adheres to the defined interface contract.
func RunRecipientStoreContract(t *testing.T, store RecipientStore) {
	ctx := context.Background()
	recipientID := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := &Record{
			ID:            recipientID,
			FirstName:     "Hodoug",
			MiddleName:    "K",
			LastName:      "Joung",
			AccountNumber: "0012345678",
		}

		err := store.Save(ctx, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, recipientID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record, loaded)
		// Leading zeros and digit strings must survive persistence as text.
		assert.Equal(t, "0012345678", loaded.AccountNumber)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		err := store.Save(ctx, &Record{ID: recipientID, FirstName: "New", LastName: "Name", AccountNumber: "1"})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, recipientID)
		require.NoError(t, err)
		assert.Equal(t, "New", loaded.FirstName)
		assert.Empty(t, loaded.MiddleName, "absent middle name stays absent")
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, recipientID)
		require.NoError(t, err)
		loaded.FirstName = "mutated"

		again, err := store.Load(ctx, recipientID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.FirstName)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+recipientID)
		assert.ErrorIs(t, err, domain.ErrRecipientNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := recipientID + "-1"
		id2 := recipientID + "-2"
		require.NoError(t, store.Save(ctx, &Record{ID: id1, FirstName: "a", LastName: "b", AccountNumber: "1"}))
		require.NoError(t, store.Save(ctx, &Record{ID: id2, FirstName: "c", LastName: "d", AccountNumber: "2"}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, recipientID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, recipientID)
		assert.ErrorIs(t, err, domain.ErrRecipientNotFound, "Load after Delete should return ErrRecipientNotFound")

		assert.NoError(t, store.Delete(ctx, recipientID), "Delete is idempotent")
	})
}
