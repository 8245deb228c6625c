package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"butce/internal/core"
)

type summaryPayload struct {
	Income     string              `json:"income"`
	Expense    string              `json:"expense"`
	Net        string              `json:"net"`
	Unsettled  string              `json:"unsettled"`
	ByCategory []categoryAmountDTO `json:"by_category"`
	ByTag      []tagAmountDTO      `json:"by_tag"`
}

type categoryAmountDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type tagAmountDTO struct {
	Tag    string `json:"tag"`
	Amount string `json:"amount"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := summaryCacheKey(period)
	summary, found := s.summaryCache.Get(key)
	if found {
		slog.DebugContext(r.Context(), "Summary cache hit", "key", key)
	} else {
		summary, err = s.service.Summary(r.Context(), period)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.summaryCache.Set(key, summary)
	}

	writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}

func summaryCacheKey(p core.Period) string {
	return strconv.Itoa(p.Year) + "-" + strconv.Itoa(p.Month)
}

func toSummaryPayload(summary core.Summary) summaryPayload {
	payload := summaryPayload{
		Income:     summary.Income.DecimalString(),
		Expense:    summary.Expense.DecimalString(),
		Net:        summary.Net.DecimalString(),
		Unsettled:  summary.Unsettled.DecimalString(),
		ByCategory: make([]categoryAmountDTO, len(summary.ByCategory)),
		ByTag:      make([]tagAmountDTO, len(summary.ByTag)),
	}
	for i, ca := range summary.ByCategory {
		payload.ByCategory[i] = categoryAmountDTO{Name: ca.Name, Amount: ca.Amount.DecimalString()}
	}
	for i, ta := range summary.ByTag {
		payload.ByTag[i] = tagAmountDTO{Tag: ta.Tag, Amount: ta.Amount.DecimalString()}
	}
	return payload
}
