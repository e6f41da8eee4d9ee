package server

import (
	"errors"
	"net/http"

	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	shared "github.com/fitsync/server/pkg"
)

// handleUser returns the authenticated Google account's profile.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	hc, err := s.auth.Client(r.Context())
	if errors.Is(err, shared.ErrNoCredentials) {
		s.writeError(w, http.StatusUnauthorized, errors.New("not authenticated"))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	svc, err := oauth2v2.NewService(r.Context(), option.WithHTTPClient(hc))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	info, err := svc.Userinfo.Get().Context(r.Context()).Do()
	if err != nil {
		s.logger.Error("Failed to fetch user profile", "error", err)
		s.writeError(w, http.StatusInternalServerError, errors.New("failed to fetch user profile"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":    info.Name,
		"email":   info.Email,
		"picture": info.Picture,
	})
}
