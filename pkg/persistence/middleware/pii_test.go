package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/recipient/pkg/persistence/middleware"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsIs(err, target error) bool { return errors.Is(err, target) }

func TestPIIMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlyingStore := NewMockStore(&ports.Record{ID: "1", FirstName: "Hodoug", LastName: "Joung", AccountNumber: "12345678901234"})
	view := middleware.NewPIIMiddleware()(underlyingStore)

	masked, err := view.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "**********1234", masked.AccountNumber)
	assert.Equal(t, "Hodoug", masked.FirstName)

	original, err := underlyingStore.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "12345678901234", original.AccountNumber, "the stored value is untouched")

	assert.ErrorIs(t, view.Save(ctx, masked), middleware.ErrReadOnly)
	assert.ErrorIs(t, view.Delete(ctx, "1"), middleware.ErrReadOnly)

	ids, err := view.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "", middleware.MaskAccountNumber(""))
	assert.Equal(t, "***", middleware.MaskAccountNumber("123"))
	assert.Equal(t, "****", middleware.MaskAccountNumber("1234"))
	assert.Equal(t, "******7890", middleware.MaskAccountNumber("1234567890"))
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	underlyingStore := NewMockStore()
	encrypt := mustEncrypt(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	writable := middleware.Chain(underlyingStore, encrypt)
	require.NoError(t, writable.Save(ctx, &ports.Record{ID: "1", AccountNumber: "1234567890"}))

	view := middleware.Chain(underlyingStore, middleware.NewPIIMiddleware(), encrypt)
	masked, err := view.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "******7890", masked.AccountNumber, "decrypted, then masked")
}
