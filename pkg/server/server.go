// Package server exposes the HTTP surface: the OAuth flow, manual sync
// triggers and the read API backing the dashboard.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/infrastructure/oauth"
	"github.com/fitsync/server/pkg/infrastructure/sentry"
	"github.com/fitsync/server/pkg/syncer"
)

const (
	// Manual syncs hammer the upstream API; keep them rare.
	syncRateLimit  = 10
	syncRateWindow = time.Minute
)

type Server struct {
	syncer shared.Syncer
	store  shared.DailyStore
	auth   *oauth.Manager
	logger *slog.Logger

	// oauthState guards the callback against forged codes. One state per
	// process is enough for a single-user server.
	oauthState string
}

func New(sync shared.Syncer, store shared.DailyStore, auth *oauth.Manager, logger *slog.Logger) *Server {
	return &Server{
		syncer:     sync,
		store:      store,
		auth:       auth,
		logger:     logger.With("component", "server"),
		oauthState: uuid.NewString(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/auth", s.handleAuth)
	r.Get("/auth/callback", s.handleAuthCallback)
	r.Post("/auth/logout", s.handleLogout)

	limiter := httprate.NewRateLimiter(syncRateLimit, syncRateWindow, httprate.WithKeyByIP())
	r.With(limiter.Handler).Post("/api/sync", s.handleSync)
	r.With(limiter.Handler).Get("/api/sync", s.handleSync)

	r.Get("/api/latest-data", s.handleLatestData)
	r.Get("/api/range", s.handleRange)
	r.Get("/api/user", s.handleUser)
	r.Get("/api/status", s.handleStatus)

	return r
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.auth.AuthURL(s.oauthState), http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/?error=missing_code", http.StatusFound)
		return
	}
	if r.URL.Query().Get("state") != s.oauthState {
		http.Redirect(w, r, "/?error=state_mismatch", http.StatusFound)
		return
	}

	if err := s.auth.Exchange(r.Context(), code); err != nil {
		s.logger.Error("OAuth code exchange failed", "error", err)
		http.Redirect(w, r, "/?error=auth_failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSync runs one orchestrator pass and returns the aggregate mapping.
// 409 when a pass is already in flight, 500 on any other failure.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	daily, err := s.syncer.Run(r.Context())
	if errors.Is(err, syncer.ErrSyncInProgress) {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		s.logger.Error("Manual sync failed", "error", err)
		sentry.CaptureException(err, map[string]interface{}{"trigger": "manual"})
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, daily)
}

// handleLatestData returns today's stored record, or an empty object when
// today has not been synced yet.
func (s *Server) handleLatestData(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC().Format(time.DateOnly)
	rec, err := s.store.GetDay(r.Context(), today)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if rec == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleRange returns stored records with start <= date <= end, keyed by date.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !validDate(start) || !validDate(end) {
		s.writeError(w, http.StatusBadRequest, errors.New("start and end must be YYYY-MM-DD dates"))
		return
	}

	recs, err := s.store.ListRange(r.Context(), start, end)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"authenticated": s.auth != nil && s.auth.Authenticated(),
	}
	if last, ok := s.syncer.LastSync(); ok {
		status["lastSync"] = last.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, status)
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
