package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gocarina/gocsv"

	"stravadash/clients/strava"
	"stravadash/cmd/web"
	"stravadash/internal/database"
	"stravadash/internal/services"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.IndexHandler)
	r.Get("/health", s.healthHandler)
	r.Handle("/assets/*", http.FileServer(http.FS(web.Files)))

	if s.directToken.AccessToken != "" {
		r.Get("/dashboard", s.DashboardHandler)
		r.Get("/dashboard/activities.csv", s.ActivitiesCSVHandler)
		r.Get("/api/dashboard", s.DashboardJSONHandler)
	}

	if s.auth != nil {
		r.Route("/oauth", func(r chi.Router) {
			r.Get("/login", s.LoginHandler)
			r.Get("/callback", s.CallbackHandler)
			r.Get("/dashboard", s.SessionDashboardHandler)
			r.Get("/logout", s.LogoutHandler)
		})
	}

	return r
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	templ.Handler(web.IndexPage(s.directToken.AccessToken != "", s.auth != nil)).ServeHTTP(w, r)
}

func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context(), s.directToken)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	links := web.DashboardLinks{CSV: "/dashboard/activities.csv"}
	templ.Handler(web.DashboardPage(d, links)).ServeHTTP(w, r)
}

func (s *Server) DashboardJSONHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	d, err := s.dashboard.Build(r.Context(), s.directToken)
	if err != nil {
		status, _, msg := errorView(err)
		slog.Error("error building dashboard", "err", err)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	if err := json.NewEncoder(w).Encode(d); err != nil {
		slog.Error("error encoding dashboard", "err", err)
	}
}

func (s *Server) ActivitiesCSVHandler(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Build(r.Context(), s.directToken)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="activities.csv"`)
	if err := gocsv.Marshal(d.Recent, w); err != nil {
		slog.Error("error writing activities csv", "err", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	health := s.db.Health()
	if health["status"] != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("error encoding health", "err", err)
	}
}

// renderError writes the error page for a failure that stopped the dashboard.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, title, msg := errorView(err)
	slog.Error(title, "err", err, "status", status)
	templ.Handler(web.ErrorPage(title, msg), templ.WithStatus(status)).ServeHTTP(w, r)
}

func errorView(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrNoToken), errors.Is(err, database.ErrSessionNotFound):
		return http.StatusUnauthorized, "Not connected", "Connect your Strava account to view the dashboard."
	case errors.Is(err, strava.ErrAuthExchangeFailed):
		return http.StatusBadGateway, "Strava authorization failed", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Failed to fetch data", "Strava did not respond in time."
	default:
		return http.StatusBadGateway, "Failed to fetch data", err.Error()
	}
}
