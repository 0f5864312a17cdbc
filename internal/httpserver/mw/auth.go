package mw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pelajarin/kelas/internal/logger"
	redisstore "github.com/pelajarin/kelas/internal/store/redis"
)

type ctxKey int

const bearerKey ctxKey = iota

// BearerFrom returns the credential attached to the request context by Auth.
func BearerFrom(ctx context.Context) string {
	bearer, _ := ctx.Value(bearerKey).(string)
	return bearer
}

// WithBearer attaches a credential to the context. Exported for handler tests.
func WithBearer(ctx context.Context, bearer string) context.Context {
	return context.WithValue(ctx, bearerKey, bearer)
}

// Auth resolves the caller's credential. A raw bearer token in the
// Authorization header passes straight through; an X-Session-Key header is
// exchanged for the stored bearer when a credential store is configured.
// Requests carrying neither are rejected.
func Auth(creds redisstore.CredentialStore, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "" {
				bearer := strings.TrimPrefix(auth, "Bearer ")
				if bearer == auth || bearer == "" {
					unauthorized(w, "malformed authorization header")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithBearer(r.Context(), bearer)))
				return
			}

			sessionKey := r.Header.Get("X-Session-Key")
			if sessionKey == "" {
				unauthorized(w, "missing credentials")
				return
			}
			if creds == nil {
				unauthorized(w, "session keys not supported")
				return
			}

			cred, err := creds.GetCredential(r.Context(), sessionKey)
			if err != nil {
				if !errors.Is(err, redisstore.ErrCredentialNotFound) {
					log.Error("credential lookup failed", logger.Error(err))
				}
				unauthorized(w, "unknown session key")
				return
			}

			// Refresh last-seen and TTL on every use. Best-effort: a failed
			// refresh never blocks the request.
			if err := creds.TouchCredential(r.Context(), sessionKey); err != nil {
				log.Debug("failed to refresh credential", logger.Error(err))
			}

			next.ServeHTTP(w, r.WithContext(WithBearer(r.Context(), cred.Bearer)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
