package http

import (
	"errors"
	"log/slog"
	"net/http"

	"butce/internal/session"
)

type loginPayload struct {
	Password string `json:"password"`
}

type sessionPayload struct {
	Token   string `json:"token,omitempty"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.login(w, r)
	case http.MethodDelete:
		s.logout(w, r)
	default:
		methodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body loginPayload
	if !decodeBody(w, r, &body) {
		return
	}

	token, err := s.sessions.Login(body.Password)
	if errors.Is(err, session.ErrWrongPassword) {
		slog.WarnContext(r.Context(), "Login rejected", "url", r.URL.Path)
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionPayload{
		Token:   token,
		Enabled: s.sessions.Enabled(),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}
