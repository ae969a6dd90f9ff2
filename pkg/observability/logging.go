package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/recipient/pkg/domain"
)

// LoggingHooks writes one record per lifecycle event.
// Failed round-trips are logged at warn level, everything else at info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseChange: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "phase_change",
				"recipient_id", e.RecipientID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnAlert: func(ctx context.Context, e *domain.AlertEvent) {
			logger.InfoContext(ctx, "alert",
				"recipient_id", e.RecipientID,
				"alert", e.Alert,
			)
		},
		OnCall: func(ctx context.Context, e *domain.CallEvent) {
			logger.InfoContext(ctx, "collaborator_call",
				"recipient_id", e.RecipientID,
				"operation", e.Operation,
			)
		},
		OnReturn: func(ctx context.Context, e *domain.CallEvent) {
			level := slog.LevelInfo
			if e.IsError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "collaborator_return",
				"recipient_id", e.RecipientID,
				"operation", e.Operation,
				"is_error", e.IsError,
				"duration", e.Duration,
			)
		},
	}
}
