package domain

import "strings"

// Recipient is the record edited by the screen: a payee name and the bank
// account money is sent to.
type Recipient struct {
	// ID is opaque. It is never validated.
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"` // Empty means absent.
	LastName   string `json:"lastName"`

	AccountNumber string `json:"accountNumber"`
}

// DeriveName returns the display name of the recipient.
func (r Recipient) DeriveName() string {
	return DeriveName(r.FirstName, r.MiddleName, r.LastName)
}

// Values returns the editable fields of the recipient.
func (r Recipient) Values() Values {
	return Values{
		FieldFirstName:     r.FirstName,
		FieldMiddleName:    r.MiddleName,
		FieldLastName:      r.LastName,
		FieldAccountNumber: r.AccountNumber,
	}
}

// DeriveName joins first, middle and last name with single spaces,
// skipping the empty parts.
func DeriveName(firstName, middleName, lastName string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{firstName, middleName, lastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
