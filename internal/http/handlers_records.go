package http

import (
	"log/slog"
	"net/http"
	"strings"

	"butce/internal/core"
)

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost:
		s.createRecord(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.service.Records(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	records = core.FilterByPeriod(records, period)

	payload := make([]recordPayload, len(records))
	for i, rec := range records {
		payload[i] = toRecordPayload(rec)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var body recordPayload
	if !decodeBody(w, r, &body) {
		return
	}

	rec, err := body.toRecord()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	// Client-sent IDs are ignored; the store assigns identity.
	rec.ID = ""

	saved, err := s.service.AddRecord(r.Context(), rec)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Clear()
	slog.InfoContext(r.Context(), "Record created",
		"id", saved.ID,
		"category", saved.Category,
		"kind", saved.Kind,
		"amount_cents", saved.Amount.Cents)

	writeJSON(w, http.StatusCreated, toRecordPayload(saved))
}

type replacePayload struct {
	RemoveIDs    []string        `json:"remove_ids"`
	Replacements []recordPayload `json:"replacements"`
}

func (s *Server) replaceRecords(w http.ResponseWriter, r *http.Request) {
	var body replacePayload
	if !decodeBody(w, r, &body) {
		return
	}

	recs, err := decodeRecordPayloads(body.Replacements)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	appended, err := s.service.ReplaceRecords(r.Context(), body.RemoveIDs, recs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Clear()
	slog.InfoContext(r.Context(), "Records replaced",
		"removed", len(body.RemoveIDs),
		"appended", len(appended))

	payload := make([]recordPayload, len(appended))
	for i, rec := range appended {
		payload[i] = toRecordPayload(rec)
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleRecordByID routes /api/records/{id}, /api/records/{id}/settled,
// and /api/records/replace.
func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "record id required")
		return
	}

	if rest == "replace" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.replaceRecords(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/settled"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.settleRecord(w, r, id)
		return
	}

	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	s.deleteRecord(w, r, rest)
}

type settlePayload struct {
	Settled bool `json:"settled"`
}

func (s *Server) settleRecord(w http.ResponseWriter, r *http.Request, id string) {
	var body settlePayload
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.service.SettleRecord(r.Context(), id, body.Settled); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "settled": body.Settled})
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.RemoveRecord(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Clear()
	slog.InfoContext(r.Context(), "Record deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
