package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventAlert       EventType = "alert"
	EventCall        EventType = "collaborator_call"
	EventReturn      EventType = "collaborator_return"
)

// Operation names the collaborator a workflow dispatches to.
type Operation string

const (
	OperationFetch  Operation = "fetch"
	OperationUpdate Operation = "update"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	RecipientID string    `json:"recipient_id"`
}

// PhaseEvent is emitted when the workflow moves to another phase.
type PhaseEvent struct {
	EventBase
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// AlertEvent is emitted when an alert is raised.
type AlertEvent struct {
	EventBase
	Alert Alert `json:"alert"`
}

// CallEvent describes a fetch or update round-trip.
type CallEvent struct {
	EventBase
	Operation Operation     `json:"operation"`
	IsError   bool          `json:"is_error,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"` // Set on return only
}

// LifecycleHooks defines callbacks for workflow observability.
type LifecycleHooks struct {
	OnPhaseChange func(context.Context, *PhaseEvent)
	OnAlert       func(context.Context, *AlertEvent)
	OnCall        func(context.Context, *CallEvent)
	OnReturn      func(context.Context, *CallEvent)
}

// MergeHooks fans every event out to all given hooks, in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhaseChange: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range all {
				if h.OnPhaseChange != nil {
					h.OnPhaseChange(ctx, e)
				}
			}
		},
		OnAlert: func(ctx context.Context, e *AlertEvent) {
			for _, h := range all {
				if h.OnAlert != nil {
					h.OnAlert(ctx, e)
				}
			}
		},
		OnCall: func(ctx context.Context, e *CallEvent) {
			for _, h := range all {
				if h.OnCall != nil {
					h.OnCall(ctx, e)
				}
			}
		},
		OnReturn: func(ctx context.Context, e *CallEvent) {
			for _, h := range all {
				if h.OnReturn != nil {
					h.OnReturn(ctx, e)
				}
			}
		},
	}
}
