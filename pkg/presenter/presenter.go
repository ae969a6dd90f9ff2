// Package presenter projects a workflow State into a rendering-agnostic view model.
// It performs no I/O and is a total function of the state.
package presenter

import (
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/workflow"
)

// FieldType selects the input widget of a field.
type FieldType string

const FieldTypeText FieldType = "text-field"

// ButtonType mirrors the HTML button types.
type ButtonType string

const (
	ButtonTypeButton ButtonType = "button"
	ButtonTypeSubmit ButtonType = "submit"
)

// HrefBack asks the view to navigate to the previous screen.
const HrefBack = "_back"

// Fixed texts of the screen.
const (
	Title              = "Edit recipient"
	CancelLabel        = "Cancel"
	SubmitLabel        = "Save"
	AcknowledgeLabel   = "OK"
	FetchErrorTitle    = "Could not load the recipient."
	SubmissionErrTitle = "Could not update the recipient."
	SubmittedTitle     = "Recipient updated."
)

// Labels holds the label of every editable field.
var Labels = map[domain.Field]string{
	domain.FieldFirstName:     "First name",
	domain.FieldMiddleName:    "Middle name",
	domain.FieldLastName:      "Last name",
	domain.FieldAccountNumber: "Account number",
}

var modalTitles = map[domain.Alert]string{
	domain.AlertFetchError:      FetchErrorTitle,
	domain.AlertSubmissionError: SubmissionErrTitle,
	domain.AlertSubmitted:       SubmittedTitle,
}

// Header is the top of the screen.
type Header struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

// Field describes one input.
type Field struct {
	Type     FieldType    `json:"type"`
	Name     domain.Field `json:"name"`
	Label    string       `json:"label"`
	Value    string       `json:"value"`
	Error    string       `json:"error"`
	Disabled bool         `json:"disabled"`
}

// Button describes one action.
type Button struct {
	Type     ButtonType `json:"type,omitempty"`
	Label    string     `json:"label"`
	Href     string     `json:"href,omitempty"`
	Disabled bool       `json:"disabled"`
}

// Modal describes one alert dialog.
type Modal struct {
	Alert       domain.Alert `json:"alert"`
	Open        bool         `json:"open"`
	Title       string       `json:"title"`
	ButtonLabel string       `json:"buttonLabel"`
}

// Screen is the complete view model.
type Screen struct {
	Header  Header   `json:"header"`
	Fields  []Field  `json:"fields"`
	Buttons []Button `json:"buttons"`
	Modals  []Modal  `json:"modals"`
}

// Present builds the view model of state.
func Present(state *domain.State) Screen {
	if state == nil {
		state = domain.NewState()
	}
	busy := state.Phase.Busy()

	fields := make([]Field, 0, len(domain.Fields))
	for _, name := range domain.Fields {
		fields = append(fields, Field{
			Type:     FieldTypeText,
			Name:     name,
			Label:    Labels[name],
			Value:    state.Values[name],
			Error:    state.Errors[name],
			Disabled: busy,
		})
	}

	modals := make([]Modal, 0, len(domain.Alerts))
	for _, alert := range domain.Alerts {
		modals = append(modals, Modal{
			Alert:       alert,
			Open:        state.Alert == alert,
			Title:       modalTitles[alert],
			ButtonLabel: AcknowledgeLabel,
		})
	}

	return Screen{
		Header: Header{
			Title: Title,
			Name:  state.Values.DeriveName(),
		},
		Fields: fields,
		Buttons: []Button{
			{
				Label:    CancelLabel,
				Href:     HrefBack,
				Disabled: busy,
			},
			{
				Type:     ButtonTypeSubmit,
				Label:    SubmitLabel,
				Disabled: !workflow.IsSubmittable(state) || busy,
			},
		},
		Modals: modals,
	}
}

// OpenModal returns the modal currently shown, if any.
func (s Screen) OpenModal() (Modal, bool) {
	for _, m := range s.Modals {
		if m.Open {
			return m, true
		}
	}
	return Modal{}, false
}

// SubmitButton returns the submit action.
func (s Screen) SubmitButton() Button {
	for _, b := range s.Buttons {
		if b.Type == ButtonTypeSubmit {
			return b
		}
	}
	return Button{Disabled: true}
}

// CancelButton returns the back navigation.
func (s Screen) CancelButton() Button {
	for _, b := range s.Buttons {
		if b.Href == HrefBack {
			return b
		}
	}
	return Button{Disabled: true}
}

// Field returns the descriptor of name.
func (s Screen) Field(name domain.Field) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
