package domain

import "fmt"

// Field names an editable attribute of a Recipient.
type Field string

const (
	FieldFirstName     Field = "firstName"
	FieldMiddleName    Field = "middleName"
	FieldLastName      Field = "lastName"
	FieldAccountNumber Field = "accountNumber"
)

// Fields lists the editable fields in display order.
var Fields = []Field{
	FieldFirstName,
	FieldMiddleName,
	FieldLastName,
	FieldAccountNumber,
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Values holds the current text of each editable field.
type Values map[Field]string

// DeriveName returns the display name composed from the name fields.
func (v Values) DeriveName() string {
	return DeriveName(v[FieldFirstName], v[FieldMiddleName], v[FieldLastName])
}

// Recipient builds the entity identified by id from the current values.
func (v Values) Recipient(id string) Recipient {
	return Recipient{
		ID:            id,
		FirstName:     v[FieldFirstName],
		MiddleName:    v[FieldMiddleName],
		LastName:      v[FieldLastName],
		AccountNumber: v[FieldAccountNumber],
	}
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Errors holds the validation message of each invalid field.
// A missing key or an empty message means the field is valid.
type Errors map[Field]string

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, msg := range e {
		out[k] = msg
	}
	return out
}
