// Package transport simulates the network between the screen and the record backend.
// It serves records from a RecipientStore with optional latency, rate limiting and
// injected faults, and exposes the ports.FetchFunc and ports.UpdateFunc signatures.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a call exceeds the configured rate.
var ErrRateLimited = errors.New("transport rate limit exceeded")

// FaultFunc decides whether a call fails; returning nil lets it through.
type FaultFunc func(op domain.Operation, recipientID string) error

// API is the mocked record backend.
type API struct {
	store   ports.RecipientStore
	latency time.Duration
	limiter *rate.Limiter
	fault   FaultFunc
	locker  ports.DistributedLocker
	logger  *slog.Logger
}

// Option configures the API.
type Option func(*API)

// WithLatency delays every call by d, or until the context is done.
func WithLatency(d time.Duration) Option {
	return func(a *API) {
		a.latency = d
	}
}

// WithRateLimit rejects calls above rps with ErrRateLimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *API) {
		if rps > 0 && burst > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithFault injects failures.
func WithFault(fn FaultFunc) Option {
	return func(a *API) {
		a.fault = fn
	}
}

// WithLocker serializes updates of the same record across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *API) {
		a.locker = locker
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// New creates the API over store.
func New(store ports.RecipientStore, opts ...Option) *API {
	a := &API{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DefaultRecord is the record the demo backend starts with.
func DefaultRecord() *ports.Record {
	return &ports.Record{
		ID:            "1",
		FirstName:     "Hodoug",
		LastName:      "Joung",
		AccountNumber: "12345678901234",
	}
}

// FetchRecipient returns the record stored for id. The returned id is always the requested one.
func (a *API) FetchRecipient(ctx context.Context, id string) (*ports.Record, error) {
	if err := a.before(ctx, domain.OperationFetch, id); err != nil {
		return nil, err
	}
	rec, err := a.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch recipient %s: %w", id, err)
	}
	rec.ID = id
	a.logger.Debug("recipient fetched", "recipient_id", id)
	return rec, nil
}

// UpdateRecipient replaces the stored record.
func (a *API) UpdateRecipient(ctx context.Context, rec *ports.Record) error {
	if rec == nil {
		return errors.New("update recipient: nil record")
	}
	if err := a.before(ctx, domain.OperationUpdate, rec.ID); err != nil {
		return err
	}

	if a.locker != nil {
		unlock, err := a.locker.Lock(ctx, "recipient:"+rec.ID, 10*time.Second)
		if err != nil {
			return fmt.Errorf("update recipient %s: %w", rec.ID, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				a.logger.Warn("failed to release record lock", "recipient_id", rec.ID, "err", err)
			}
		}()
	}

	if err := a.store.Save(ctx, rec.Clone()); err != nil {
		return fmt.Errorf("update recipient %s: %w", rec.ID, err)
	}
	a.logger.Debug("recipient updated", "recipient_id", rec.ID)
	return nil
}

// Seed stores rec unless a record with the same id already exists.
func (a *API) Seed(ctx context.Context, rec *ports.Record) (bool, error) {
	_, err := a.store.Load(ctx, rec.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrRecipientNotFound) {
		return false, err
	}
	return true, a.store.Save(ctx, rec.Clone())
}

// Store returns the backing store.
func (a *API) Store() ports.RecipientStore {
	return a.store
}

func (a *API) before(ctx context.Context, op domain.Operation, id string) error {
	if a.limiter != nil && !a.limiter.Allow() {
		return fmt.Errorf("%s recipient %s: %w", op, id, ErrRateLimited)
	}
	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s recipient %s: %w", op, id, ctx.Err())
		}
	}
	if a.fault != nil {
		if err := a.fault(op, id); err != nil {
			return fmt.Errorf("%s recipient %s: %w", op, id, err)
		}
	}
	return nil
}

var (
	_ ports.FetchFunc  = (*API)(nil).FetchRecipient
	_ ports.UpdateFunc = (*API)(nil).UpdateRecipient
)
