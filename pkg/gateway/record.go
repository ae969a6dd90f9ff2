package gateway

import (
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
)

// ToRecord maps the entity to the transport's wire shape.
func ToRecord(r domain.Recipient) *ports.Record {
	return &ports.Record{
		ID:            r.ID,
		FirstName:     r.FirstName,
		MiddleName:    r.MiddleName,
		LastName:      r.LastName,
		AccountNumber: r.AccountNumber,
	}
}

// FromRecord maps a wire record to the entity.
func FromRecord(rec *ports.Record) domain.Recipient {
	return domain.Recipient{
		ID:            rec.ID,
		FirstName:     rec.FirstName,
		MiddleName:    rec.MiddleName,
		LastName:      rec.LastName,
		AccountNumber: rec.AccountNumber,
	}
}
