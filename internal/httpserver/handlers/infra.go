package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pelajarin/kelas/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	LiveSessions *int   `json:"live_sessions,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	Error        string `json:"error,omitempty"`
}

type infraResponse struct {
	GatewayMode string                     `json:"gateway_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		sessionCount := d.Sessions.Count()

		components := map[string]componentStatus{
			"course_api": checkCourseAPI(d),
			"redis":      checkRedis(d),
			"sessions": {
				OK:           true,
				LiveSessions: &sessionCount,
			},
		}

		response := infraResponse{
			GatewayMode: determineGatewayMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineGatewayMode(components map[string]componentStatus) string {
	// Without the course service nothing can load or mutate.
	if api, exists := components["course_api"]; exists && !api.OK {
		return "critical"
	}
	// Without Redis the gateway still works, minus session-key exchange
	// and background syncs.
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}
	return "full"
}

func checkCourseAPI(d deps.Deps) componentStatus {
	if d.CoursePinger == nil {
		return componentStatus{
			OK:    false,
			Error: "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.CoursePinger.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "courses-unavailable",
			Error:  "unreachable",
		}
	}
	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "session-keys-disabled",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "session-keys-disabled",
			Error:  "timeout",
		}
	}
	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
