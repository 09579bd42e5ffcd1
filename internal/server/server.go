package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"stravadash/clients/strava"
	"stravadash/internal/config"
	"stravadash/internal/models"
	"stravadash/internal/services"
)

type DashboardBuilder interface {
	Build(context.Context, strava.Token) (models.Dashboard, error)
}

type TokenExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*strava.Token, error)
}

type SessionStore interface {
	Health() map[string]string
	CreateSession(ctx context.Context, token strava.Token) (string, error)
	GetSession(ctx context.Context, id string) (strava.Token, error)
	DeleteSession(ctx context.Context, id string) error
}

type Server struct {
	db        SessionStore
	dashboard DashboardBuilder
	// nil when the OAuth flow is not configured
	auth TokenExchanger
	// empty when the direct-token flow is not configured
	directToken   strava.Token
	secureCookies bool
	logger        *slog.Logger
}

func NewServer(cfg *config.Config, db SessionStore, logger *slog.Logger) *http.Server {
	s := &Server{
		db: db,
		dashboard: services.NewDashboardService(
			services.StravaClients(cfg.Strava.APIURL),
			cfg.Dashboard.Options(),
		),
		directToken:   cfg.Strava.DirectToken(),
		secureCookies: cfg.Env == "prod",
		logger:        logger,
	}
	if cfg.Strava.OAuthEnabled() {
		s.auth = strava.NewAuthenticator(cfg.Strava.OAuth())
	}

	// Declare Server config
	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
