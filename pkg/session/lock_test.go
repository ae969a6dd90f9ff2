package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopFactory(id string) *recipient.Screen {
	fetch := func(context.Context, string) (*ports.Record, error) { return &ports.Record{ID: id}, nil }
	update := func(context.Context, *ports.Record) error { return nil }
	return recipient.NewScreen(id, fetch, update, recipient.WithDispatcher(workflow.Inline))
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopFactory)
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid, _, err := mgr.Open(ctx, fmt.Sprintf("r-%d", i))
		require.NoError(t, err)
		_ = mgr.WithLock(ctx, sid, func(context.Context, *recipient.Screen) error { return nil })
		require.NoError(t, mgr.Close(sid))
	}

	// Locks of missing sessions are released too.
	_ = mgr.WithLock(ctx, "missing", func(context.Context, *recipient.Screen) error { return nil })

	assert.Empty(t, mgr.locks, "locks leaked after close")
	assert.Empty(t, mgr.List())
}
