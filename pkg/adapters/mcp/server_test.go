package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/aretw0/recipient/pkg/session"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *transport.API) {
	t.Helper()
	api := transport.New(memory.NewStore(memory.WithSeed(transport.DefaultRecord())))
	sessions := session.NewManager(func(id string) *recipient.Screen {
		return recipient.NewScreen(id, api.FetchRecipient, api.UpdateRecipient)
	})
	t.Cleanup(sessions.CloseAll)
	return NewServer(sessions), api
}

func TestTools_EditAndSubmit(t *testing.T) {
	s, api := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	opened, err := s.handleOpen(ctx, req, openArgs{RecipientID: "1"})
	require.NoError(t, err)
	require.NotEmpty(t, opened.SessionID)
	assert.Equal(t, domain.PhaseFetched, opened.State.Phase)
	assert.True(t, opened.View.SubmitButton().Disabled, "fetched account number is too long")

	_, err = s.handleSubmit(ctx, req, sessionArgs{SessionID: opened.SessionID})
	assert.ErrorIs(t, err, domain.ErrNotSubmittable)

	changed, err := s.handleChange(ctx, req, changeArgs{
		SessionID: opened.SessionID,
		Field:     "accountNumber",
		Value:     "1234567890",
	})
	require.NoError(t, err)
	assert.False(t, changed.View.SubmitButton().Disabled)

	submitted, err := s.handleSubmit(ctx, req, sessionArgs{SessionID: opened.SessionID})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSubmitted, submitted.State.Phase)
	modal, ok := submitted.View.OpenModal()
	require.True(t, ok)
	assert.Equal(t, presenter.SubmittedTitle, modal.Title)

	rec, err := api.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", rec.AccountNumber)

	closed, err := s.handleCloseAlert(ctx, req, sessionArgs{SessionID: opened.SessionID})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertNone, closed.State.Alert)

	rendered, err := s.handleRender(ctx, req, sessionArgs{SessionID: opened.SessionID})
	require.NoError(t, err)
	assert.Equal(t, closed.State, rendered.State)
}

func TestTools_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleOpen(ctx, req, openArgs{})
	assert.Error(t, err)

	_, err = s.handleFetch(ctx, req, sessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	opened, err := s.handleOpen(ctx, req, openArgs{RecipientID: "1"})
	require.NoError(t, err)

	_, err = s.handleChange(ctx, req, changeArgs{SessionID: opened.SessionID, Field: "nickname"})
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	_, err = s.handleChange(ctx, req, changeArgs{SessionID: opened.SessionID, Field: "firstName", Value: "bad\xff"})
	assert.Error(t, err)
}

func TestTools_FetchFailureOpensAlert(t *testing.T) {
	s, _ := newTestServer(t)

	opened, err := s.handleOpen(context.Background(), mcp.CallToolRequest{}, openArgs{RecipientID: "42"})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertFetchError, opened.State.Alert)

	modal, ok := opened.View.OpenModal()
	require.True(t, ok)
	assert.Equal(t, presenter.FetchErrorTitle, modal.Title)
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t)

	raw := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.MCPServer().HandleMessage(context.Background(), raw)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"open_screen", "render_screen", "fetch", "change", "submit", "close_alert", "close_screen"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
