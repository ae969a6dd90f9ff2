/*
Package recipient drives a single screen that lets a user view and edit one recipient:
a person's name and the bank account payments are sent to.

The screen is a small state machine. Fetching loads the record, every edit is validated
as it happens, and submitting stores the record again. Transport failures never surface
as errors; they move the screen back to a safe phase and raise an alert the user
acknowledges.

# Architecture

The package is the entry point of a hexagonal layout:

  - pkg/domain holds the recipient entity, the workflow state and lifecycle events.
  - pkg/workflow runs the state machine over a slot store with merge semantics.
  - pkg/gateway translates between the entity and the snake_case wire record.
  - pkg/presenter turns a state into a rendering-agnostic view model.
  - pkg/adapters provides record stores, an HTTP server and client and an MCP server.

# Usage

	api := transport.New(memory.NewStore(memory.WithSeed(transport.DefaultRecord())))

	screen := recipient.NewScreen("1", api.FetchRecipient, api.UpdateRecipient)
	screen.Fetch(ctx)
	screen.Wait()

	_ = screen.Change(domain.FieldAccountNumber, "1234567890")
	if err := screen.Submit(ctx); err != nil {
		// The form still carries validation messages.
	}
	screen.Wait()

	view := screen.View() // Header, Fields, Buttons, Modals
*/
package recipient
