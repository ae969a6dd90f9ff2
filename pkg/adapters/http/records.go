package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/recipient/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// GetRecipient handles the GET /api/recipients/{id} request.
func (s *Server) GetRecipient(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Records.FetchRecipient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, s.logger)
}

// PutRecipient handles the PUT /api/recipients/{id} request.
// The id in the path wins over any id in the body.
func (s *Server) PutRecipient(w http.ResponseWriter, r *http.Request) {
	var rec ports.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	rec.ID = chi.URLParam(r, "id")

	if err := s.Records.UpdateRecipient(r.Context(), &rec); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
