package recipient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/gateway"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/aretw0/recipient/pkg/workflow"
)

// Screen binds one recipient update workflow and its presenter to a recipient id.
// It is the high-level entry point used by the CLI, the HTTP server and the MCP server.
type Screen struct {
	recipientID string
	workflow    *workflow.Workflow
	hooks       domain.LifecycleHooks
	dispatcher  workflow.Dispatcher
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Screen.
type Option func(*Screen)

// WithLogger sets a custom structured logger for the screen and its gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Screen) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Screen) {
		s.hooks = hooks
	}
}

// WithDispatcher replaces how fetch and update calls are run.
// Pass workflow.Inline to run them on the caller's goroutine.
func WithDispatcher(d workflow.Dispatcher) Option {
	return func(s *Screen) {
		s.dispatcher = d
	}
}

// NewScreen creates the screen editing recipientID over the given transport functions.
func NewScreen(recipientID string, fetch ports.FetchFunc, update ports.UpdateFunc, opts ...Option) *Screen {
	s := &Screen{recipientID: recipientID}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	wfOpts := []workflow.Option{
		workflow.WithLogger(s.logger),
		workflow.WithLifecycleHooks(s.hooks),
	}
	if s.dispatcher != nil {
		wfOpts = append(wfOpts, workflow.WithDispatcher(s.dispatcher))
	}

	s.workflow = workflow.New(recipientID,
		gateway.NewFetcher(fetch, gateway.WithLogger(s.logger)),
		gateway.NewUpdater(update, gateway.WithLogger(s.logger)),
		wfOpts...,
	)
	return s
}

// RecipientID returns the id of the edited recipient.
func (s *Screen) RecipientID() string {
	return s.recipientID
}

// Fetch loads the recipient. The screen shows the fetching phase until the call returns.
func (s *Screen) Fetch(ctx context.Context) {
	s.workflow.Fetch(ctx)
}

// Change edits one field and re-validates it.
func (s *Screen) Change(field domain.Field, value string) error {
	return s.workflow.Change(field, value)
}

// Submit stores the current values.
// It refuses with domain.ErrNotSubmittable while the save button is disabled.
func (s *Screen) Submit(ctx context.Context) error {
	if s.View().SubmitButton().Disabled {
		return fmt.Errorf("recipient %s: %w", s.recipientID, domain.ErrNotSubmittable)
	}
	s.workflow.Update(ctx)
	return nil
}

// CloseAlert acknowledges the open modal, if any.
func (s *Screen) CloseAlert() {
	s.workflow.CloseAlert()
}

// State returns a snapshot of the workflow state.
func (s *Screen) State() *domain.State {
	return s.workflow.State()
}

// View renders the current state.
func (s *Screen) View() presenter.Screen {
	return presenter.Present(s.workflow.State())
}

// Subscribe registers fn to be called after every state write.
// The returned function removes the subscription.
func (s *Screen) Subscribe(fn workflow.Observer) func() {
	return s.workflow.Store().Subscribe(fn)
}

// Wait blocks until every in-flight fetch or update has returned.
func (s *Screen) Wait() {
	s.workflow.Wait()
}
