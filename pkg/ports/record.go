package ports

import "context"

// Record is the wire shape of a recipient, as served by the transport.
type Record struct {
	ID            string `json:"id" yaml:"id"`
	FirstName     string `json:"first_name" yaml:"first_name"`
	MiddleName    string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	LastName      string `json:"last_name" yaml:"last_name"`
	AccountNumber string `json:"account_number" yaml:"account_number"`
}

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// FetchFunc loads the record of a recipient from the transport.
type FetchFunc func(ctx context.Context, recipientID string) (*Record, error)

// UpdateFunc replaces the record of a recipient through the transport.
type UpdateFunc func(ctx context.Context, record *Record) error
