package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name   string
		first  string
		middle string
		last   string
		want   string
	}{
		{"all parts", "Hodoug", "K", "Joung", "Hodoug K Joung"},
		{"no middle", "Hodoug", "", "Joung", "Hodoug Joung"},
		{"only last", "", "", "Joung", "Joung"},
		{"only middle", "", "K", "", "K"},
		{"empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.DeriveName(tt.first, tt.middle, tt.last)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "  ")
			assert.Equal(t, got, strings.TrimSpace(got))
		})
	}
}

func TestRecipient_ValuesRoundTrip(t *testing.T) {
	r := domain.Recipient{ID: "1", FirstName: "Hodoug", LastName: "Joung", AccountNumber: "1234567890"}

	assert.Equal(t, r, r.Values().Recipient("1"))
	assert.Equal(t, "Hodoug Joung", r.DeriveName())
	assert.Equal(t, r.DeriveName(), r.Values().DeriveName())
}

func TestParseField(t *testing.T) {
	f, err := domain.ParseField("accountNumber")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldAccountNumber, f)

	_, err = domain.ParseField("id")
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestNewState_SeedsEveryField(t *testing.T) {
	s := domain.NewState()

	assert.Equal(t, domain.PhaseInit, s.Phase)
	assert.Equal(t, domain.AlertNone, s.Alert)
	assert.Empty(t, s.Errors)
	for _, f := range domain.Fields {
		v, ok := s.Values[f]
		assert.True(t, ok, "missing %s", f)
		assert.Empty(t, v)
	}
}

func TestState_SnapshotIsIndependent(t *testing.T) {
	s := domain.NewState()
	snap := s.Snapshot()
	snap.Values[domain.FieldFirstName] = "changed"
	snap.Errors[domain.FieldLastName] = "x"

	assert.Empty(t, s.Values[domain.FieldFirstName])
	assert.Empty(t, s.Errors)
}

func TestAlert_JSON(t *testing.T) {
	data, err := json.Marshal(domain.NewState())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alert":null`)

	var s domain.State
	require.NoError(t, json.Unmarshal([]byte(`{"phase":"fetched","alert":"submitted"}`), &s))
	assert.Equal(t, domain.AlertSubmitted, s.Alert)

	require.NoError(t, json.Unmarshal([]byte(`{"phase":"fetched","alert":null}`), &s))
	assert.Equal(t, domain.AlertNone, s.Alert)
}
