package presenter_test

import (
	"testing"

	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/aretw0/recipient/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchedState() *domain.State {
	s := domain.NewState()
	s.Phase = domain.PhaseFetched
	s.Values[domain.FieldFirstName] = "Hodoug"
	s.Values[domain.FieldLastName] = "Joung"
	s.Values[domain.FieldAccountNumber] = "1234567890"
	return s
}

func TestPresent_HeaderAndFields(t *testing.T) {
	s := fetchedState()
	s.Errors[domain.FieldAccountNumber] = workflow.MsgAccountNumberLength

	screen := presenter.Present(s)

	assert.Equal(t, presenter.Header{Title: presenter.Title, Name: "Hodoug Joung"}, screen.Header)
	require.Len(t, screen.Fields, 4)

	names := make([]domain.Field, 0, 4)
	for _, f := range screen.Fields {
		names = append(names, f.Name)
		assert.Equal(t, presenter.FieldTypeText, f.Type)
		assert.Equal(t, presenter.Labels[f.Name], f.Label)
		assert.False(t, f.Disabled)
	}
	assert.Equal(t, domain.Fields, names)

	account, ok := screen.Field(domain.FieldAccountNumber)
	require.True(t, ok)
	assert.Equal(t, "1234567890", account.Value)
	assert.Equal(t, workflow.MsgAccountNumberLength, account.Error)

	middle, _ := screen.Field(domain.FieldMiddleName)
	assert.Empty(t, middle.Value)
	assert.Empty(t, middle.Error)
}

func TestPresent_BusyPhasesDisableEverything(t *testing.T) {
	for _, phase := range []domain.Phase{domain.PhaseFetching, domain.PhaseSubmitting} {
		t.Run(string(phase), func(t *testing.T) {
			s := fetchedState()
			s.Phase = phase
			screen := presenter.Present(s)

			for _, f := range screen.Fields {
				assert.True(t, f.Disabled, f.Name)
			}
			for _, b := range screen.Buttons {
				assert.True(t, b.Disabled, b.Label)
			}
		})
	}
}

func TestPresent_Buttons(t *testing.T) {
	screen := presenter.Present(fetchedState())
	require.Len(t, screen.Buttons, 2)

	cancel := screen.Buttons[0]
	assert.Equal(t, presenter.CancelLabel, cancel.Label)
	assert.Equal(t, presenter.HrefBack, cancel.Href)
	assert.False(t, cancel.Disabled)

	submit := screen.SubmitButton()
	assert.Equal(t, presenter.ButtonTypeSubmit, submit.Type)
	assert.Equal(t, presenter.SubmitLabel, submit.Label)
	assert.False(t, submit.Disabled)

	invalid := fetchedState()
	invalid.Errors[domain.FieldFirstName] = workflow.MsgRequired
	assert.True(t, presenter.Present(invalid).SubmitButton().Disabled)
	assert.False(t, presenter.Present(invalid).Buttons[0].Disabled, "cancel stays enabled")
}

func TestPresent_ModalsAreMutuallyExclusive(t *testing.T) {
	titles := map[domain.Alert]string{
		domain.AlertFetchError:      presenter.FetchErrorTitle,
		domain.AlertSubmissionError: presenter.SubmissionErrTitle,
		domain.AlertSubmitted:       presenter.SubmittedTitle,
	}

	for alert, title := range titles {
		t.Run(string(alert), func(t *testing.T) {
			s := fetchedState()
			s.Alert = alert
			screen := presenter.Present(s)

			require.Len(t, screen.Modals, 3)
			open := 0
			for _, m := range screen.Modals {
				assert.Equal(t, presenter.AcknowledgeLabel, m.ButtonLabel)
				if m.Open {
					open++
				}
			}
			assert.Equal(t, 1, open)

			m, ok := screen.OpenModal()
			require.True(t, ok)
			assert.Equal(t, title, m.Title)
		})
	}

	_, ok := presenter.Present(fetchedState()).OpenModal()
	assert.False(t, ok)
}

func TestPresent_NilState(t *testing.T) {
	screen := presenter.Present(nil)
	assert.Len(t, screen.Fields, 4)
	assert.Empty(t, screen.Header.Name)
}
