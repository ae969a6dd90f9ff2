package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(opts ...transport.Option) *transport.API {
	return transport.New(memory.NewStore(memory.WithSeed(transport.DefaultRecord())), opts...)
}

func TestFetchRecipient_OverridesID(t *testing.T) {
	api := transport.New(memory.NewStore(memory.WithSeed(&ports.Record{ID: "9", FirstName: "A", LastName: "B", AccountNumber: "1"})))

	rec, err := api.FetchRecipient(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "9", rec.ID)
	assert.Equal(t, "A", rec.FirstName)
}

func TestFetchRecipient_NotFound(t *testing.T) {
	_, err := seeded().FetchRecipient(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestUpdateRecipient_Replaces(t *testing.T) {
	api := seeded()
	ctx := context.Background()

	rec := transport.DefaultRecord()
	rec.AccountNumber = "1234567890"
	rec.MiddleName = "K"
	require.NoError(t, api.UpdateRecipient(ctx, rec))

	rec.FirstName = "mutated by caller"
	got, err := api.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Hodoug", got.FirstName)
	assert.Equal(t, "1234567890", got.AccountNumber)
	assert.Equal(t, "K", got.MiddleName)

	assert.Error(t, api.UpdateRecipient(ctx, nil))
}

func TestLatency_RespectsContext(t *testing.T) {
	api := seeded(transport.WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := api.FetchRecipient(ctx, "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatency_Delays(t *testing.T) {
	api := seeded(transport.WithLatency(20 * time.Millisecond))
	start := time.Now()
	_, err := api.FetchRecipient(context.Background(), "1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRateLimit(t *testing.T) {
	api := seeded(transport.WithRateLimit(0.001, 1))
	ctx := context.Background()

	_, err := api.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	_, err = api.FetchRecipient(ctx, "1")
	assert.ErrorIs(t, err, transport.ErrRateLimited)
}

func TestFault(t *testing.T) {
	boom := errors.New("boom")
	api := seeded(transport.WithFault(func(op domain.Operation, id string) error {
		if op == domain.OperationUpdate {
			return boom
		}
		return nil
	}))
	ctx := context.Background()

	_, err := api.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.ErrorIs(t, api.UpdateRecipient(ctx, transport.DefaultRecord()), boom)
}

type countingLocker struct{ locks, unlocks int }

func (c *countingLocker) Lock(context.Context, string, time.Duration) (ports.UnlockFunc, error) {
	c.locks++
	return func(context.Context) error { c.unlocks++; return nil }, nil
}

func TestUpdateRecipient_Locks(t *testing.T) {
	locker := &countingLocker{}
	api := seeded(transport.WithLocker(locker))

	require.NoError(t, api.UpdateRecipient(context.Background(), transport.DefaultRecord()))
	assert.Equal(t, 1, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
}

func TestSeed(t *testing.T) {
	api := transport.New(memory.NewStore())
	ctx := context.Background()

	created, err := api.Seed(ctx, transport.DefaultRecord())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = api.Seed(ctx, transport.DefaultRecord())
	require.NoError(t, err)
	assert.False(t, created)
}
