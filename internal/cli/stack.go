package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/config"
	"github.com/aretw0/recipient/pkg/adapters/loam"
	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/adapters/redis"
	"github.com/aretw0/recipient/pkg/adapters/sql"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/observability"
	"github.com/aretw0/recipient/pkg/persistence/middleware"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/session"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Stack is the wired backend of every command: a record store behind the
// simulated transport, plus the hooks each screen is built with.
type Stack struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    ports.RecipientStore
	API      *transport.API
	Locker   ports.DistributedLocker
	Registry *prometheus.Registry

	hooks   domain.LifecycleHooks
	closers []func() error
}

// NewStack builds the store selected by cfg.Store.Driver and the transport on top of it.
// The default record is seeded into empty stores.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Stack{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	store, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if key := cfg.Store.Encryption.Key; key != "" {
		keys, err := middleware.ParseKeys(key, cfg.Store.Encryption.FallbackKeys...)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: store.encryption: %v", config.ErrInvalid, err)
		}
		encrypt, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		store = middleware.Chain(store, encrypt)
	}
	s.Store = store

	apiOpts := []transport.Option{
		transport.WithLatency(cfg.Transport.Latency),
		transport.WithLogger(logger),
	}
	if cfg.Transport.RateLimit > 0 {
		apiOpts = append(apiOpts, transport.WithRateLimit(cfg.Transport.RateLimit, cfg.Transport.Burst))
	}
	if s.Locker != nil {
		apiOpts = append(apiOpts, transport.WithLocker(s.Locker))
	}
	s.API = transport.New(store, apiOpts...)

	seeded, err := s.API.Seed(ctx, transport.DefaultRecord())
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("seed default recipient: %w", err)
	}
	if seeded {
		logger.Info("seeded default recipient", "recipient_id", transport.DefaultRecord().ID, "driver", cfg.Store.Driver)
	}

	metrics := observability.NewMetrics(s.Registry)
	s.hooks = domain.MergeHooks(observability.LoggingHooks(logger), metrics.Hooks())
	return s, nil
}

func (s *Stack) openStore(ctx context.Context) (ports.RecipientStore, error) {
	cfg := s.Config.Store
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil

	case config.DriverRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		s.Locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		s.closers = append(s.closers, store.Close)
		return store, nil

	case config.DriverLoam:
		store, err := loam.Open(cfg.Loam.Dir)
		if err != nil {
			return nil, fmt.Errorf("open loam store at %s: %w", cfg.Loam.Dir, err)
		}
		return store, nil

	case config.DriverSQL:
		store, err := sql.Open(cfg.SQL.DSN, sql.WithLogger(s.Logger))
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalid, cfg.Driver)
}

// NewScreen builds a screen for recipientID against the stack's transport.
func (s *Stack) NewScreen(recipientID string, opts ...recipient.Option) *recipient.Screen {
	base := []recipient.Option{
		recipient.WithLogger(s.Logger),
		recipient.WithLifecycleHooks(s.hooks),
	}
	return recipient.NewScreen(recipientID, s.API.FetchRecipient, s.API.UpdateRecipient, append(base, opts...)...)
}

// NewSessions builds a session manager whose screens come from NewScreen.
func (s *Stack) NewSessions() *session.Manager {
	opts := []session.Option{session.WithLogger(s.Logger)}
	if s.Locker != nil {
		opts = append(opts, session.WithLocker(s.Locker, 30*time.Second))
	}
	return session.NewManager(func(id string) *recipient.Screen { return s.NewScreen(id) }, opts...)
}

// MaskedStore is a read-only view of Store with account numbers masked.
func (s *Stack) MaskedStore() ports.RecipientStore {
	return middleware.Chain(s.Store, middleware.NewPIIMiddleware())
}

// Close releases store connections.
func (s *Stack) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
