package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/logger"
	redisstore "github.com/pelajarin/kelas/internal/store/redis"
)

type sessionKeyResponse struct {
	SessionKey string `json:"sessionKey"`
}

// IssueSessionKey exchanges an already-issued bearer token for an opaque
// session key, so pages can stop carrying the raw token on every request.
// The bearer itself is never validated here; the course service rejects a
// stale one on first use.
func IssueSessionKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Credentials == nil {
			writeError(w, http.StatusServiceUnavailable, "session keys disabled without redis")
			return
		}

		auth := r.Header.Get("Authorization")
		bearer := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || bearer == auth || bearer == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer credential")
			return
		}

		key, err := newSessionKey()
		if err != nil {
			d.Logger.Error("failed to generate session key", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "could not issue session key")
			return
		}

		now := time.Now()
		cred := &redisstore.Credential{
			SessionKey: key,
			Bearer:     bearer,
			CreatedAt:  now,
			LastSeenAt: now,
		}
		if err := d.Credentials.SaveCredential(r.Context(), cred); err != nil {
			d.Logger.Error("failed to store credential", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "could not issue session key")
			return
		}

		writeJSON(w, http.StatusCreated, sessionKeyResponse{SessionKey: key})
	}
}

// RevokeSessionKey deletes the stored credential for the caller's session
// key (logout from the gateway's perspective).
func RevokeSessionKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Credentials == nil {
			writeError(w, http.StatusServiceUnavailable, "session keys disabled without redis")
			return
		}

		key := r.Header.Get("X-Session-Key")
		if key == "" {
			writeError(w, http.StatusBadRequest, "missing session key")
			return
		}

		if err := d.Credentials.DeleteCredential(r.Context(), key); err != nil {
			d.Logger.Error("failed to delete credential", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "could not revoke session key")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func newSessionKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
