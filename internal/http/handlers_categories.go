package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCategories(w, r)
	case http.MethodPut:
		s.upsertCategory(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.Categories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	payload := make([]categoryPayload, len(categories))
	for i, c := range categories {
		payload[i] = toCategoryPayload(c)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) upsertCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryPayload
	if !decodeBody(w, r, &body) {
		return
	}

	cat, err := body.toCategory()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.service.UpsertCategory(r.Context(), cat); err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Category upserted",
		"name", cat.Name,
		"kind", cat.Kind,
		"recurrence_day", cat.RecurrenceDay)

	writeJSON(w, http.StatusOK, toCategoryPayload(cat))
}

// handleCategoryByName routes /api/categories/{name} and
// /api/categories/{name}/next-date. Names are URL-escaped.
func (s *Server) handleCategoryByName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "category name required")
		return
	}

	if escaped, ok := strings.CutSuffix(rest, "/next-date"); ok {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		name, err := url.PathUnescape(escaped)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category name")
			return
		}
		s.nextDueDate(w, r, name)
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category name")
		return
	}
	s.deleteCategory(w, r, name)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.service.DeleteCategory(r.Context(), name); err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Category deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

type nextDatePayload struct {
	Category string `json:"category"`
	DueOn    string `json:"due_on,omitempty"`
	Suggests bool   `json:"suggests"`
}

func (s *Server) nextDueDate(w http.ResponseWriter, r *http.Request, name string) {
	due, ok, err := s.service.NextDueDate(r.Context(), name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nextDatePayload{
		Category: name,
		DueOn:    due.String(),
		Suggests: ok,
	})
}
