package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"butce/internal/core"
	applog "butce/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyCategoryName),
		errors.Is(err, core.ErrInvalidRecurrenceDay):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrRecordNotFound),
		errors.Is(err, core.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrCategoryReferenced):
		writeError(w, http.StatusConflict, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err, applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parsePeriod reads optional year/month query parameters.
func parsePeriod(r *http.Request) (core.Period, error) {
	var p core.Period
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, errors.New("invalid year")
		}
		p.Year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return core.Period{}, errors.New("invalid month")
		}
		if p.Year == 0 {
			return core.Period{}, errors.New("month requires year")
		}
		p.Month = m
	}
	return p, nil
}

// recordPayload is the wire shape of a ledger record.
type recordPayload struct {
	ID         string `json:"id,omitempty"`
	OccurredOn string `json:"occurred_on"`
	Category   string `json:"category"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	DueOn      string `json:"due_on,omitempty"`
	Note       string `json:"note,omitempty"`
	Settled    bool   `json:"settled,omitempty"`
}

func (p recordPayload) toRecord() (core.Record, error) {
	occurredOn, err := core.ParseDate(p.OccurredOn)
	if err != nil {
		return core.Record{}, err
	}
	dueOn, err := core.ParseDate(p.DueOn)
	if err != nil {
		return core.Record{}, err
	}
	kind, err := core.ParseKind(p.Kind)
	if err != nil {
		return core.Record{}, err
	}
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(p.Amount))
	if err != nil {
		return core.Record{}, err
	}
	return core.Record{
		ID:         strings.TrimSpace(p.ID),
		OccurredOn: occurredOn,
		Category:   sanitizeInput(p.Category),
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		DueOn:      dueOn,
		Note:       sanitizeInput(p.Note),
		Settled:    p.Settled,
	}, nil
}

func toRecordPayload(rec core.Record) recordPayload {
	return recordPayload{
		ID:         rec.ID,
		OccurredOn: rec.OccurredOn.String(),
		Category:   rec.Category,
		Kind:       string(rec.Kind),
		Amount:     rec.Amount.DecimalString(),
		DueOn:      rec.DueOn.String(),
		Note:       rec.Note,
		Settled:    rec.Settled,
	}
}

func decodeRecordPayloads(payloads []recordPayload) ([]core.Record, error) {
	recs := make([]core.Record, len(payloads))
	for i, p := range payloads {
		rec, err := p.toRecord()
		if err != nil {
			return nil, err
		}
		recs[i] = rec
	}
	return recs, nil
}

type categoryPayload struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	RecurrenceDay int    `json:"recurrence_day,omitempty"`
}

func (p categoryPayload) toCategory() (core.Category, error) {
	kind, err := core.ParseKind(p.Kind)
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:          sanitizeInput(p.Name),
		Kind:          kind,
		RecurrenceDay: p.RecurrenceDay,
	}, nil
}

func toCategoryPayload(c core.Category) categoryPayload {
	return categoryPayload{
		Name:          c.Name,
		Kind:          string(c.Kind),
		RecurrenceDay: c.RecurrenceDay,
	}
}
