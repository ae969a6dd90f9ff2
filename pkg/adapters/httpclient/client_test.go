package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/recipient"
	recipienthttp "github.com/aretw0/recipient/pkg/adapters/http"
	"github.com/aretw0/recipient/pkg/adapters/httpclient"
	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/session"
	"github.com/aretw0/recipient/pkg/transport"
	"github.com/aretw0/recipient/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) (*httptest.Server, *transport.API) {
	t.Helper()
	api := transport.New(memory.NewStore(memory.WithSeed(transport.DefaultRecord())))
	sessions := session.NewManager(func(id string) *recipient.Screen {
		return recipient.NewScreen(id, api.FetchRecipient, api.UpdateRecipient)
	})
	handler, err := recipienthttp.NewHandler(sessions, api)
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, api
}

func TestClient_RoundTrip(t *testing.T) {
	ts, api := newBackend(t)
	client := httpclient.New(ts.URL + "/")
	ctx := context.Background()

	rec, err := client.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, transport.DefaultRecord(), rec)

	rec.MiddleName = "K"
	require.NoError(t, client.UpdateRecipient(ctx, rec))

	stored, err := api.FetchRecipient(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "K", stored.MiddleName)
}

func TestClient_NotFound(t *testing.T) {
	ts, _ := newBackend(t)
	client := httpclient.New(ts.URL)

	_, err := client.FetchRecipient(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestClient_RejectedRecord(t *testing.T) {
	ts, _ := newBackend(t)

	// The record schema rejects unknown properties.
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/recipients/1",
		strings.NewReader(`{"first_name":"Ana","last_name":"","account_number":"","nickname":"A"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var hits atomic.Int32
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"request body has an error: doesn't match schema"}`))
	}))
	defer rejecting.Close()

	client := httpclient.New(rejecting.URL, httpclient.WithRetries(3, time.Millisecond))
	err = client.UpdateRecipient(context.Background(), &ports.Record{ID: "1", FirstName: "Ana"})
	assert.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)
	assert.ErrorContains(t, err, "doesn't match schema")
	assert.EqualValues(t, 1, hits.Load(), "client errors are not retried")
}

func TestClient_RetriesRateLimited(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","first_name":"Hodoug","last_name":"Joung","account_number":"1234567890"}`))
	}))
	defer ts.Close()

	client := httpclient.New(ts.URL, httpclient.WithRetries(3, time.Millisecond))
	rec, err := client.FetchRecipient(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", rec.AccountNumber)
	assert.EqualValues(t, 3, hits.Load())
}

func TestClient_NoRetryByDefault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := httpclient.New(ts.URL).FetchRecipient(context.Background(), "1")
	assert.ErrorIs(t, err, transport.ErrRateLimited)
}

func TestClient_DrivesScreen(t *testing.T) {
	ts, _ := newBackend(t)
	client := httpclient.New(ts.URL)

	screen := recipient.NewScreen("1", client.FetchRecipient, client.UpdateRecipient,
		recipient.WithDispatcher(workflow.Inline))
	screen.Fetch(context.Background())
	assert.Equal(t, "Hodoug Joung", screen.View().Header.Name)

	require.NoError(t, screen.Change(domain.FieldAccountNumber, "1234567890"))
	require.NoError(t, screen.Submit(context.Background()))
	assert.Equal(t, domain.AlertSubmitted, screen.State().Alert)
}
