package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
)

// Fetcher loads one recipient. Exactly one of onSuccess or onError is invoked, once.
type Fetcher interface {
	Fetch(ctx context.Context, recipientID string, onSuccess func(domain.Recipient), onError func())
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, recipientID string, onSuccess func(domain.Recipient), onError func())

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, recipientID string, onSuccess func(domain.Recipient), onError func()) {
	f(ctx, recipientID, onSuccess, onError)
}

// Updater stores one recipient. Exactly one of onSuccess or onError is invoked, once.
type Updater interface {
	Update(ctx context.Context, recipient domain.Recipient, onSuccess func(), onError func())
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx context.Context, recipient domain.Recipient, onSuccess func(), onError func())

// Update calls f.
func (f UpdaterFunc) Update(ctx context.Context, recipient domain.Recipient, onSuccess func(), onError func()) {
	f(ctx, recipient, onSuccess, onError)
}

// Dispatcher runs a collaborator call.
type Dispatcher func(call func())

// Inline runs the call on the caller's goroutine.
func Inline(call func()) { call() }

// Workflow is the recipient update state machine.
//
//	init --Fetch--> fetching --ok--> fetched --Update--> submitting --ok--> submitted
//	                fetching --err--> init (fetch-error)
//	                                        submitting --err--> fetched (submission-error)
//
// Change and CloseAlert are accepted in every phase and never move the phase.
type Workflow struct {
	recipientID string
	fetcher     Fetcher
	updater     Updater
	store       *Store
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	dispatch    Dispatcher

	drainMu  sync.RWMutex // Held exclusively by Wait so no call is admitted while draining
	inflight sync.WaitGroup
}

// Option defines a functional option for configuring the Workflow.
type Option func(*Workflow)

// WithStore shares an existing state store.
func WithStore(store *Store) Option {
	return func(w *Workflow) {
		w.store = store
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workflow) {
		w.hooks = hooks
	}
}

// WithDispatcher replaces how collaborator calls are run (default: one goroutine per call).
func WithDispatcher(d Dispatcher) Option {
	return func(w *Workflow) {
		w.dispatch = d
	}
}

// New creates the workflow of the screen editing recipientID.
func New(recipientID string, fetcher Fetcher, updater Updater, opts ...Option) *Workflow {
	w := &Workflow{
		recipientID: recipientID,
		fetcher:     fetcher,
		updater:     updater,
		logger:      logging.NewNop(),
	}
	w.dispatch = w.spawn
	for _, opt := range opts {
		opt(w)
	}
	if w.store == nil {
		w.store = NewStore()
	}
	w.logger = w.logger.With("recipient_id", recipientID)
	return w
}

// RecipientID returns the id bound at construction.
func (w *Workflow) RecipientID() string {
	return w.recipientID
}

// Store exposes the state store for observers.
func (w *Workflow) Store() *Store {
	return w.store
}

// State returns a snapshot of the current state.
func (w *Workflow) State() *domain.State {
	return w.store.Snapshot()
}

// Fetch loads the recipient and validates every fetched field.
func (w *Workflow) Fetch(ctx context.Context) {
	w.setPhase(ctx, domain.PhaseFetching)

	w.call(ctx, domain.OperationFetch, func(ctx context.Context, done func(isError bool)) {
		w.fetcher.Fetch(ctx, w.recipientID,
			func(recipient domain.Recipient) {
				values := recipient.Values()
				w.store.MergeValues(values)
				w.setPhase(ctx, domain.PhaseFetched)
				for _, field := range domain.Fields {
					w.store.MergeErrors(domain.Errors{field: Validate(field, values[field])})
				}
				done(false)
			},
			func() {
				w.setPhase(ctx, domain.PhaseInit)
				w.setAlert(ctx, domain.AlertFetchError)
				done(true)
			},
		)
	})
}

// Change writes value into field and re-validates that field only.
func (w *Workflow) Change(field domain.Field, value string) error {
	if _, err := domain.ParseField(string(field)); err != nil {
		return err
	}
	w.store.MergeValues(domain.Values{field: value})
	w.store.MergeErrors(domain.Errors{field: Validate(field, value)})
	return nil
}

// Update submits the current values.
func (w *Workflow) Update(ctx context.Context) {
	recipient := w.store.Snapshot().Values.Recipient(w.recipientID)
	w.setPhase(ctx, domain.PhaseSubmitting)

	w.call(ctx, domain.OperationUpdate, func(ctx context.Context, done func(isError bool)) {
		w.updater.Update(ctx, recipient,
			func() {
				w.setPhase(ctx, domain.PhaseSubmitted)
				w.setAlert(ctx, domain.AlertSubmitted)
				done(false)
			},
			func() {
				w.setPhase(ctx, domain.PhaseFetched)
				w.setAlert(ctx, domain.AlertSubmissionError)
				done(true)
			},
		)
	})
}

// CloseAlert dismisses the pending alert.
func (w *Workflow) CloseAlert() {
	w.store.SetAlert(domain.AlertNone)
}

// Wait blocks until every dispatched collaborator call has returned.
// Calls started while Wait drains are held back until it returns.
func (w *Workflow) Wait() {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()
	w.inflight.Wait()
}

func (w *Workflow) spawn(call func()) {
	go call()
}

// call dispatches one collaborator round-trip. The collaborator receives a context
// that is not cancelled with the caller's: an in-flight call is never aborted.
func (w *Workflow) call(ctx context.Context, op domain.Operation, run func(ctx context.Context, done func(isError bool))) {
	ctx = context.WithoutCancel(ctx)

	if w.hooks.OnCall != nil {
		w.hooks.OnCall(ctx, &domain.CallEvent{
			EventBase: w.event(domain.EventCall),
			Operation: op,
		})
	}

	start := time.Now()
	done := func(isError bool) {
		w.logger.Debug("collaborator returned", "operation", op, "is_error", isError)
		if w.hooks.OnReturn != nil {
			w.hooks.OnReturn(ctx, &domain.CallEvent{
				EventBase: w.event(domain.EventReturn),
				Operation: op,
				IsError:   isError,
				Duration:  time.Since(start),
			})
		}
	}

	w.drainMu.RLock()
	w.inflight.Add(1)
	w.drainMu.RUnlock()
	w.dispatch(func() {
		defer w.inflight.Done()
		run(ctx, done)
	})
}

func (w *Workflow) setPhase(ctx context.Context, phase domain.Phase) {
	prev := w.store.SwapPhase(phase)
	if prev == phase {
		return
	}
	w.logger.Debug("phase changed", "from", prev, "to", phase)
	if w.hooks.OnPhaseChange != nil {
		w.hooks.OnPhaseChange(ctx, &domain.PhaseEvent{
			EventBase: w.event(domain.EventPhaseChange),
			From:      prev,
			To:        phase,
		})
	}
}

func (w *Workflow) setAlert(ctx context.Context, alert domain.Alert) {
	w.store.SetAlert(alert)
	if w.hooks.OnAlert != nil {
		w.hooks.OnAlert(ctx, &domain.AlertEvent{
			EventBase: w.event(domain.EventAlert),
			Alert:     alert,
		})
	}
}

func (w *Workflow) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:   time.Now(),
		Type:        t,
		RecipientID: w.recipientID,
	}
}
