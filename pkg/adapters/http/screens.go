package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aretw0/recipient"
	"github.com/aretw0/recipient/internal/sanitize"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/presenter"
	"github.com/go-chi/chi/v5"
)

// ScreenResponse is the body of every screen operation.
type ScreenResponse struct {
	SessionID string           `json:"session_id"`
	State     *domain.State    `json:"state"`
	View      presenter.Screen `json:"view"`
}

// OpenScreenRequest is the body of POST /screens.
type OpenScreenRequest struct {
	RecipientID string `json:"recipient_id"`
}

// ChangeRequest is the body of POST /screens/{sid}/change.
type ChangeRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func snapshot(sessionID string, screen *recipient.Screen) ScreenResponse {
	state := screen.State()
	return ScreenResponse{
		SessionID: sessionID,
		State:     state,
		View:      presenter.Present(state),
	}
}

// OpenScreen handles the POST /screens request.
func (s *Server) OpenScreen(w http.ResponseWriter, r *http.Request) {
	var body OpenScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	if body.RecipientID == "" {
		s.writeError(w, fmt.Errorf("%w: recipient_id is required", errBadRequest))
		return
	}

	sid, screen, err := s.Sessions.Open(r.Context(), body.RecipientID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if wantWait(r) {
		screen.Wait()
	}
	writeJSON(w, http.StatusCreated, snapshot(sid, screen), s.logger)
}

// ListScreens handles the GET /screens request.
func (s *Server) ListScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions.List(), s.logger)
}

// GetScreen handles the GET /screens/{sid} request.
func (s *Server) GetScreen(w http.ResponseWriter, r *http.Request) {
	s.withScreen(w, r, http.StatusOK, func(context.Context, *recipient.Screen) error { return nil })
}

// CloseScreen handles the DELETE /screens/{sid} request.
func (s *Server) CloseScreen(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if err := s.Sessions.Close(sid); err != nil {
		s.writeError(w, err)
		return
	}
	s.Streams.CloseSession(sid)
	w.WriteHeader(http.StatusNoContent)
}

// FetchScreen handles the POST /screens/{sid}/fetch request.
func (s *Server) FetchScreen(w http.ResponseWriter, r *http.Request) {
	s.withScreen(w, r, http.StatusAccepted, func(ctx context.Context, screen *recipient.Screen) error {
		screen.Fetch(ctx)
		return nil
	})
}

// SubmitScreen handles the POST /screens/{sid}/submit request.
func (s *Server) SubmitScreen(w http.ResponseWriter, r *http.Request) {
	s.withScreen(w, r, http.StatusAccepted, func(ctx context.Context, screen *recipient.Screen) error {
		return screen.Submit(ctx)
	})
}

// ChangeField handles the POST /screens/{sid}/change request.
func (s *Server) ChangeField(w http.ResponseWriter, r *http.Request) {
	var body ChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	field, err := domain.ParseField(body.Field)
	if err != nil {
		s.writeError(w, err)
		return
	}
	value, err := sanitize.Value(body.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.withScreen(w, r, http.StatusOK, func(_ context.Context, screen *recipient.Screen) error {
		return screen.Change(field, value)
	})
}

// CloseAlert handles the POST /screens/{sid}/close-alert request.
func (s *Server) CloseAlert(w http.ResponseWriter, r *http.Request) {
	s.withScreen(w, r, http.StatusOK, func(_ context.Context, screen *recipient.Screen) error {
		screen.CloseAlert()
		return nil
	})
}

// withScreen runs op under the session lock and answers with the resulting snapshot.
func (s *Server) withScreen(w http.ResponseWriter, r *http.Request, status int, op func(context.Context, *recipient.Screen) error) {
	sid := chi.URLParam(r, "sid")

	var resp ScreenResponse
	err := s.Sessions.WithLock(r.Context(), sid, func(ctx context.Context, screen *recipient.Screen) error {
		if err := op(ctx, screen); err != nil {
			return err
		}
		if wantWait(r) {
			screen.Wait()
		}
		resp = snapshot(sid, screen)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, resp, s.logger)
}

func wantWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}
