package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/blockpad/pkg/errors"
	"github.com/matzehuels/blockpad/pkg/store"
)

// errorResponse is the JSON envelope for error replies. Code carries a
// machine-readable error code for programmatic callers.
type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error reply.
func writeError(w http.ResponseWriter, status int, code apperrors.Code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeStoreError maps store sentinels onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, apperrors.ErrCodeDocumentNotFound, "document not found")
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid document id")
	default:
		s.logger.Error("store error", "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeStore, err.Error())
	}
}
