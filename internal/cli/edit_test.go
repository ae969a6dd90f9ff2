package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/recipient/internal/config"
	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryStack(t *testing.T) *Stack {
	t.Helper()
	cfg := config.Default()
	cfg.Transport.Latency = 0
	stack, err := NewStack(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })
	return stack
}

func TestRunEdit_EditAndSave(t *testing.T) {
	stack := memoryStack(t)
	screen := stack.NewScreen("1")

	in := strings.NewReader(strings.Join([]string{
		"submit",
		"set accountNumber 1234567890",
		"set middleName K Lee",
		"submit",
		"ok",
		"quit",
	}, "\n"))
	var out bytes.Buffer

	err := RunEdit(context.Background(), screen, EditOptions{In: in, Out: &out})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "**Hodoug Joung**")
	assert.Contains(t, out.String(), "the form cannot be saved yet")
	assert.Contains(t, out.String(), presenter.SubmittedTitle)
	assert.Equal(t, domain.AlertNone, screen.State().Alert)

	rec, err := stack.API.FetchRecipient(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", rec.AccountNumber)
	assert.Equal(t, "K Lee", rec.MiddleName)
}

func TestRunEdit_JSON(t *testing.T) {
	stack := memoryStack(t)
	screen := stack.NewScreen("1")

	var out bytes.Buffer
	err := RunEdit(context.Background(), screen, EditOptions{
		In:   strings.NewReader("set firstName \n"),
		Out:  &out,
		JSON: true,
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, HandleExecutionError(err))

	dec := json.NewDecoder(&out)
	var first, second editSnapshot
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, domain.PhaseFetched, first.State.Phase)
	assert.Equal(t, "Hodoug", first.State.Values[domain.FieldFirstName])
	assert.Equal(t, "This field is required.", second.State.Errors[domain.FieldFirstName])
	assert.Equal(t, "Joung", second.View.Header.Name)
}

func TestRunEdit_BadCommands(t *testing.T) {
	stack := memoryStack(t)
	screen := stack.NewScreen("1")

	var out bytes.Buffer
	err := RunEdit(context.Background(), screen, EditOptions{
		In:  strings.NewReader("dance\nset nickname x\nhelp\ncancel\n"),
		Out: &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `unknown command "dance"`)
	assert.Contains(t, out.String(), "unknown field")
	assert.Contains(t, out.String(), "Commands:")
}

func TestRunEdit_FetchFailure(t *testing.T) {
	stack := memoryStack(t)
	screen := stack.NewScreen("missing")

	var out bytes.Buffer
	err := RunEdit(context.Background(), screen, EditOptions{In: strings.NewReader("q\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), presenter.FetchErrorTitle)
}

func TestRunEdit_Cancelled(t *testing.T) {
	stack := memoryStack(t)
	screen := stack.NewScreen("1")

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunEdit(ctx, screen, EditOptions{In: pr, Out: io.Discard})
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoError(t, HandleExecutionError(err))
	case <-time.After(2 * time.Second):
		t.Fatal("edit loop did not stop on cancel")
	}
}
