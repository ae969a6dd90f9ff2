package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/aretw0/recipient/pkg/ports"
)

// ErrReadOnly is returned by writes through a masking store.
var ErrReadOnly = errors.New("store is read-only")

// visibleDigits is how many trailing account digits a masked view keeps.
const visibleDigits = 4

type piiMiddleware struct {
	next ports.RecipientStore
}

// NewPIIMiddleware returns a read-only view that masks account numbers on Load.
// Saving or deleting through it fails with ErrReadOnly, so a masked value can
// never overwrite the real one.
func NewPIIMiddleware() Middleware {
	return func(next ports.RecipientStore) ports.RecipientStore {
		return &piiMiddleware{next: next}
	}
}

func (m *piiMiddleware) Save(context.Context, *ports.Record) error {
	return ErrReadOnly
}

func (m *piiMiddleware) Load(ctx context.Context, recipientID string) (*ports.Record, error) {
	record, err := m.next.Load(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	masked := record.Clone()
	masked.AccountNumber = MaskAccountNumber(record.AccountNumber)
	return masked, nil
}

func (m *piiMiddleware) Delete(context.Context, string) error {
	return ErrReadOnly
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// MaskAccountNumber replaces all but the last four characters with '*'.
// Values of four characters or fewer are fully masked.
func MaskAccountNumber(s string) string {
	runes := []rune(s)
	if len(runes) <= visibleDigits {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-visibleDigits) + string(runes[len(runes)-visibleDigits:])
}
