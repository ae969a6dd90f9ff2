package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/recipient/internal/config"
	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStack_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		locker bool
	}{
		{"memory", func(c *config.Config) {}, false},
		{"redis", func(c *config.Config) {
			c.Store.Driver = config.DriverRedis
			c.Store.Redis.Addr = mr.Addr()
		}, true},
		{"loam", func(c *config.Config) {
			c.Store.Driver = config.DriverLoam
			c.Store.Loam.Dir = t.TempDir()
		}, false},
		{"sql", func(c *config.Config) {
			c.Store.Driver = config.DriverSQL
			c.Store.SQL.DSN = filepath.Join(t.TempDir(), "recipients.db")
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Transport.Latency = 0
			tt.mutate(cfg)

			stack, err := NewStack(context.Background(), cfg, logging.NewNop())
			if tt.name == "sql" && err != nil {
				t.Skipf("sqlite unavailable: %v", err)
			}
			require.NoError(t, err)
			defer stack.Close()

			assert.Equal(t, tt.locker, stack.Locker != nil)

			rec, err := stack.API.FetchRecipient(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, transport.DefaultRecord(), rec, "empty stores are seeded")
		})
	}
}

func TestNewStack_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "tape"

	_, err := NewStack(context.Background(), cfg, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNewStack_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.Redis.Addr = addr

	_, err := NewStack(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "connect to redis")
}

func TestStack_SessionsRecordMetrics(t *testing.T) {
	stack := memoryStack(t)
	sessions := stack.NewSessions()
	defer sessions.CloseAll()

	_, screen, err := sessions.Open(context.Background(), "1")
	require.NoError(t, err)
	screen.Wait()

	families, err := stack.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "recipient_phase_transitions_total")
}

func TestNewStack_Encryption(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Transport.Latency = 0
	cfg.Store.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	stack, err := NewStack(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	rec, err := stack.API.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "12345678901234", rec.AccountNumber)

	masked, err := stack.MaskedStore().Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "**********1234", masked.AccountNumber)

	cfg.Store.Encryption.Key = "not-base64"
	_, err = NewStack(ctx, cfg, logging.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalid)
}
