// Package server assembles the HTTP server from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisSessions "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/github"
	"github.com/yukikurage/minitrello-api/internal/logger"
	"github.com/yukikurage/minitrello-api/internal/mailer"
	"github.com/yukikurage/minitrello-api/internal/metrics"
	"github.com/yukikurage/minitrello-api/internal/services"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg   *config.Config
	log   *logger.Logger
	http  *http.Server
	redis *redis.Client
}

// New builds the production wiring: redis (when REDIS_HOST is set), GitHub, OpenAI and SMTP clients
func New(cfg *config.Config, log *logger.Logger, db *gorm.DB) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rdb *redis.Client
	if addr := cfg.Redis.RedisAddr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	// only assign when configured so the interface stays nil otherwise
	var githubAPI services.GitHubAPI
	if cfg.GitHubEnabled() {
		githubAPI = github.NewClient(cfg.GitHub)
	} else {
		log.Warn("GitHub OAuth credentials not configured, GitHub sign-in disabled")
	}

	var generator services.TaskGenerator
	if cfg.OpenAI.APIKey != "" {
		generator = services.NewAIService(cfg.OpenAI.APIKey)
	}

	router, err := NewRouter(Options{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Metrics:      metrics.New(),
		SessionStore: store,
		Mailer:       mailer.New(cfg, log),
		Redis:        rdb,
		GitHub:       githubAPI,
		Generator:    generator,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:   cfg,
		log:   log,
		redis: rdb,
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Server starting", "addr", s.http.Addr, "environment", s.cfg.App.Environment)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return nil
}

// newSessionStore keeps OAuth state in redis when available and in a signed cookie otherwise
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	if addr := cfg.Redis.RedisAddr(); addr != "" {
		store, err := redisSessions.NewStore(10, "tcp", addr, "", cfg.Redis.Password, []byte(cfg.App.SessionSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store.Options(options)
		return store, nil
	}

	store := cookie.NewStore([]byte(cfg.App.SessionSecret))
	store.Options(options)
	return store, nil
}
