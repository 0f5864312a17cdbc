package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/session"
	redisstore "github.com/pelajarin/kelas/internal/store/redis"
)

// Pinger reports reachability of the upstream course service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time           // for testing, defaults to time.Now
	AllowedHosts  []string                   // Host headers allowed to access the server
	AllowedCIDRS  []string                   // IPs allowed to access infra endpoints
	TrustProxy    bool                       // true if running behind a trusted reverse proxy
	RedisClient   *redis.Client              // Redis client connection (nil when disabled)
	Credentials   redisstore.CredentialStore // Credential store (nil when redis disabled)
	API           session.API                // Upstream course service client
	CoursePinger  Pinger                     // Reachability check for the course service
	Sessions      *session.Registry          // Live course sessions
	Bus           *bus.Bus                   // Cross-page progress notifications
	ResyncTrigger chan struct{}              // Channel to trigger a manual completed-courses sync (nil if disabled)
}
