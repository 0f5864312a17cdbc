package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pelajarin/kelas/internal/domain"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// upstreamStatus maps a course service failure onto the gateway's response
// status. Authorization failures surface as 401; everything else the
// upstream did wrong is a bad gateway.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidModule):
		return http.StatusNotFound
	case errors.Is(err, courseapi.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
