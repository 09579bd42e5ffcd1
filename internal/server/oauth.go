package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"stravadash/clients/strava"
	"stravadash/cmd/web"
	"stravadash/internal/database"
)

const (
	stateCookie   = "stravadash_oauth_state"
	sessionCookie = "stravadash_session"
)

// LoginHandler starts the authorization-code flow.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/oauth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.auth.AuthCodeURL(state), http.StatusFound)
}

// CallbackHandler exchanges the authorization code and stores the
// resulting token in a new session.
func (s *Server) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		slog.Info("strava authorization declined", "reason", reason)
		badRequest(w, r, "Strava authorization was declined: "+reason)
		return
	}

	code := q.Get("code")
	if code == "" {
		badRequest(w, r, "Missing authorization code.")
		return
	}

	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		slog.Warn("oauth state mismatch", "err", err)
		badRequest(w, r, "Authorization state did not match. Please try again.")
		return
	}
	s.clearCookie(w, stateCookie, "/oauth")

	token, err := s.auth.Exchange(r.Context(), code)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	id, err := s.db.CreateSession(r.Context(), *token)
	if err != nil {
		slog.Error("error creating session", "err", err)
		templ.Handler(web.ErrorPage("Session error", "Could not store the Strava session."),
			templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/oauth/dashboard", http.StatusFound)
}

func (s *Server) SessionDashboardHandler(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessionToken(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	d, err := s.dashboard.Build(r.Context(), token)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	templ.Handler(web.DashboardPage(d, web.DashboardLinks{Logout: "/oauth/logout"})).ServeHTTP(w, r)
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.db.DeleteSession(r.Context(), c.Value); err != nil {
			slog.Error("error deleting session", "err", err)
		}
	}
	s.clearCookie(w, sessionCookie, "/")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) sessionToken(r *http.Request) (strava.Token, error) {
	c, err := r.Cookie(sessionCookie)
	if errors.Is(err, http.ErrNoCookie) {
		return strava.Token{}, database.ErrSessionNotFound
	}
	if err != nil {
		return strava.Token{}, err
	}
	return s.db.GetSession(r.Context(), c.Value)
}

func (s *Server) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	templ.Handler(web.ErrorPage("Bad request", msg), templ.WithStatus(http.StatusBadRequest)).ServeHTTP(w, r)
}
