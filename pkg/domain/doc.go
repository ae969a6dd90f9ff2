/*
Package domain contains the core data model of the recipient editor.

It defines the recipient entity, the workflow state that a screen session owns, and the
events and diffs emitted while that state changes. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Recipient: the record being edited (name and bank account).
  - Field, Values, Errors: the editable fields, their current text and validation messages.
  - State: the snapshot of one screen (Phase, Values, Errors, Alert).
  - StateDiff: a per-slot delta between two snapshots, pushed to clients.
  - LifecycleHooks: callbacks for phase changes, alerts and collaborator round-trips.
*/
package domain
