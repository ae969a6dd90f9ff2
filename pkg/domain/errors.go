package domain

import "errors"

// ErrRecipientNotFound is returned when a recipient ID cannot be found in the store.
var ErrRecipientNotFound = errors.New("recipient not found")

// ErrSessionNotFound is returned when a screen session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownField is returned when a field name is not editable.
var ErrUnknownField = errors.New("unknown field")

// ErrNotSubmittable is returned when a submit is requested while the submit button is disabled.
var ErrNotSubmittable = errors.New("recipient is not submittable")
