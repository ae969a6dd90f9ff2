package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Phase *Phase `json:"phase,omitempty"`

	// Alert is null when the alert was closed.
	Alert *Alert `json:"alert,omitempty"`

	// Values contains only changed or added fields.
	Values Values `json:"values,omitempty"`

	// Errors contains changed messages. A cleared error is sent as "".
	Errors Errors `json:"errors,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(sessionID string, oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: sessionID}

	if oldState == nil || oldState.Phase != newState.Phase {
		phase := newState.Phase
		diff.Phase = &phase
	}
	if oldState == nil || oldState.Alert != newState.Alert {
		alert := newState.Alert
		diff.Alert = &alert
	}

	diff.Values = diffValues(oldState, newState)
	diff.Errors = diffErrors(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValues(old, new *State) Values {
	delta := make(Values)
	for k, v := range new.Values {
		if old == nil {
			delta[k] = v
			continue
		}
		if prev, ok := old.Values[k]; !ok || prev != v {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffErrors(old, new *State) Errors {
	delta := make(Errors)
	for k, msg := range new.Errors {
		if old == nil || old.Errors[k] != msg {
			delta[k] = msg
		}
	}
	if old != nil {
		for k, msg := range old.Errors {
			if _, ok := new.Errors[k]; !ok && msg != "" {
				delta[k] = ""
			}
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.Alert == nil &&
		len(d.Values) == 0 &&
		len(d.Errors) == 0
}

// Apply merges the diff into state, the way a client replays pushed updates.
func (d *StateDiff) Apply(state *State) {
	if d == nil || state == nil {
		return
	}
	if d.Phase != nil {
		state.Phase = *d.Phase
	}
	if d.Alert != nil {
		state.Alert = *d.Alert
	}
	if state.Values == nil {
		state.Values = make(Values)
	}
	for k, v := range d.Values {
		state.Values[k] = v
	}
	if state.Errors == nil {
		state.Errors = make(Errors)
	}
	for k, msg := range d.Errors {
		if msg == "" {
			delete(state.Errors, k)
			continue
		}
		state.Errors[k] = msg
	}
}
