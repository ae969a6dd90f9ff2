/*
Package workflow implements the recipient update use case.

A Workflow owns the State of one screen and is the only place holding business rules:
the phase graph, the per-field validators and the submit gate (IsSubmittable). It talks
to the outside world through two injected collaborators, a Fetcher and an Updater, each
reporting back through a success/error callback pair. Transport failures are the only
failure channel; invalid input is stored as a message in State.Errors.

Every write goes through Store, which merges into exactly one slot (phase, values,
errors or alert) under a mutex and notifies observers afterwards.
*/
package workflow
