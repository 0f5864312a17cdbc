package handlers

import (
	"net/http"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/logger"
)

// Resync triggers an immediate completed-courses sync pass.
func Resync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ResyncTrigger == nil {
			writeError(w, http.StatusServiceUnavailable, "resync disabled without redis")
			return
		}

		select {
		case d.ResyncTrigger <- struct{}{}:
			d.Logger.Info("manual completed-courses sync triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
		default:
			d.Logger.Warn("completed-courses sync already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}
}
