package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/workflow"
)

// ErrEmptyResponse is reported when the transport returns neither a record nor an error.
var ErrEmptyResponse = errors.New("transport returned no record")

// Option configures the gateway adapters.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report transport failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Fetcher adapts a transport fetch to the workflow's Fetcher contract.
type Fetcher struct {
	api    ports.FetchFunc
	logger *slog.Logger
}

var _ workflow.Fetcher = (*Fetcher)(nil)

// NewFetcher wraps api.
func NewFetcher(api ports.FetchFunc, opts ...Option) *Fetcher {
	o := buildOptions(opts)
	return &Fetcher{api: api, logger: o.logger}
}

// Fetch calls the transport and reports through exactly one callback.
// Transport failures of any kind are logged and reported as onError.
func (f *Fetcher) Fetch(ctx context.Context, recipientID string, onSuccess func(domain.Recipient), onError func()) {
	var rec *ports.Record
	err := guard(func() error {
		var err error
		rec, err = f.api(ctx, recipientID)
		return err
	})
	if err == nil && rec == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		f.logger.Error("fetch recipient failed", "recipient_id", recipientID, "error", err)
		onError()
		return
	}
	onSuccess(FromRecord(rec))
}

// Updater adapts a transport update to the workflow's Updater contract.
type Updater struct {
	api    ports.UpdateFunc
	logger *slog.Logger
}

var _ workflow.Updater = (*Updater)(nil)

// NewUpdater wraps api.
func NewUpdater(api ports.UpdateFunc, opts ...Option) *Updater {
	o := buildOptions(opts)
	return &Updater{api: api, logger: o.logger}
}

// Update sends the wire shape of recipient and reports through exactly one callback.
func (u *Updater) Update(ctx context.Context, recipient domain.Recipient, onSuccess func(), onError func()) {
	rec := ToRecord(recipient)
	err := guard(func() error {
		return u.api(ctx, rec)
	})
	if err != nil {
		u.logger.Error("update recipient failed", "recipient_id", recipient.ID, "error", err)
		onError()
		return
	}
	onSuccess()
}

// guard turns a panicking transport into an error.
func guard(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return call()
}
