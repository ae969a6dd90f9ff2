package ports

import (
	"context"
)

// RecipientStore defines the interface for persisting recipient records.
// It backs the transport stub; the workflow never talks to it directly.
type RecipientStore interface {
	// Load retrieves the record of a recipient.
	// Returns domain.ErrRecipientNotFound if the record does not exist.
	Load(ctx context.Context, recipientID string) (*Record, error)

	// Save creates or replaces the record identified by record.ID.
	Save(ctx context.Context, record *Record) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, recipientID string) error

	// List returns the ids of the stored records.
	List(ctx context.Context) ([]string, error)
}
