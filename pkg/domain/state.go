package domain

import "encoding/json"

// Phase is the coarse position of the update workflow.
type Phase string

const (
	PhaseInit       Phase = "init"       // Nothing loaded yet (or the last load failed)
	PhaseFetching   Phase = "fetching"   // Waiting for the fetch collaborator
	PhaseFetched    Phase = "fetched"    // Record loaded, editable
	PhaseSubmitting Phase = "submitting" // Waiting for the update collaborator
	PhaseSubmitted  Phase = "submitted"  // Update accepted
)

// Busy reports whether a collaborator call is in flight.
func (p Phase) Busy() bool {
	return p == PhaseFetching || p == PhaseSubmitting
}

// Alert is the single pending notification of the screen.
type Alert string

const (
	AlertNone            Alert = ""
	AlertFetchError      Alert = "fetch-error"
	AlertSubmissionError Alert = "submission-error"
	AlertSubmitted       Alert = "submitted"
)

// Alerts lists the non-empty alerts in display order.
var Alerts = []Alert{AlertFetchError, AlertSubmissionError, AlertSubmitted}

// MarshalJSON encodes AlertNone as null.
func (a Alert) MarshalJSON() ([]byte, error) {
	if a == AlertNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON decodes null as AlertNone.
func (a *Alert) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*a = AlertNone
		return nil
	}
	*a = Alert(*s)
	return nil
}

// State is the snapshot of one screen's workflow.
type State struct {
	// Phase is the position in the workflow graph.
	Phase Phase `json:"phase"`

	// Values holds the current text of every editable field.
	Values Values `json:"values"`

	// Errors holds validation messages derived from Values.
	Errors Errors `json:"errors"`

	// Alert is the notification waiting for acknowledgement.
	Alert Alert `json:"alert"`
}

// NewState creates the initial state of a screen session.
func NewState() *State {
	values := make(Values, len(Fields))
	for _, f := range Fields {
		values[f] = ""
	}
	return &State{
		Phase:  PhaseInit,
		Values: values,
		Errors: make(Errors),
		Alert:  AlertNone,
	}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	return &State{
		Phase:  s.Phase,
		Values: s.Values.Clone(),
		Errors: s.Errors.Clone(),
		Alert:  s.Alert,
	}
}
