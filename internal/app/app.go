package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pelajarin/kelas/internal/bus"
	"github.com/pelajarin/kelas/internal/config"
	"github.com/pelajarin/kelas/internal/httpserver"
	"github.com/pelajarin/kelas/internal/httpserver/deps"
	"github.com/pelajarin/kelas/internal/logger"
	"github.com/pelajarin/kelas/internal/redis"
	"github.com/pelajarin/kelas/internal/scheduler"
	"github.com/pelajarin/kelas/internal/session"
	"github.com/pelajarin/kelas/internal/sources/courseapi"
	redisstore "github.com/pelajarin/kelas/internal/store/redis"
	"github.com/pelajarin/kelas/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Registry
	gc          *scheduler.SessionGC
	syncer      *scheduler.CompletedSyncer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without it the gateway still serves courses, but
	// session-key exchange and background syncs are disabled.
	var redisClient *goredis.Client
	var credentials *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(redis.Options{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		credentials = redisstore.NewStore(redisClient, cfg.CredentialTTL)
		loggerClient.Info("Redis credential store initialized")
	} else {
		loggerClient.Info("Redis not configured, session-key exchange disabled")
	}

	// Upstream course service client
	api := courseapi.NewClient(cfg.CourseAPIURL, cfg.CourseAPITimeout, loggerClient)

	// Cross-page progress notifications
	notifications := bus.New()

	// Live course sessions and their idle eviction
	sessions := session.NewRegistry()
	gc := scheduler.NewSessionGC(sessions, loggerClient, cfg.SessionGCInterval, cfg.SessionMaxIdle)

	// Completed-courses syncer runs only with a credential store to walk.
	var syncer *scheduler.CompletedSyncer
	var resyncTrigger chan struct{}
	if credentials != nil {
		resyncTrigger = make(chan struct{}, 1)
		syncer = scheduler.NewCompletedSyncer(
			api,
			credentials,
			notifications,
			loggerClient,
			cfg.ResyncInterval,
			resyncTrigger,
		)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RedisClient:   redisClient,
		API:           api,
		CoursePinger:  api,
		Sessions:      sessions,
		Bus:           notifications,
		ResyncTrigger: resyncTrigger,
	}
	if credentials != nil {
		// Assigned only when present: a nil *Store inside the interface
		// would defeat the nil checks downstream.
		d.Credentials = credentials
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		gc:          gc,
		syncer:      syncer,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Kelas v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Kelas %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start idle-session eviction
	a.gc.Start(ctx)

	// Start completed-courses syncer (if enabled)
	if a.syncer != nil {
		a.syncer.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.gc.Stop()
	if a.syncer != nil {
		a.syncer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Kelas stopped cleanly")
	return nil
}
