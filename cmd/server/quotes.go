package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/mpsdeal/internal/quotes"
)

type quoteRequest struct {
	Plan  string `json:"plan"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := quotes.ParsePlan(req.Plan)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p, ev, err := s.evaluate(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = p.Session.Name
	}
	ref, err := s.quotes.Save(r.Context(), quotes.Input{
		ProjectID: p.ID,
		Title:     title,
		Notes:     req.Notes,
		Plan:      plan,
		Offers:    ev.Offers,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	q, err := s.quotes.Get(r.Context(), ref)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":  query,
		"quotes": items,
	})
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handleQuoteText renders the stored snapshot as plain text for pasting into an email.
func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(quoteText(q)))
}

var planLabels = map[quotes.Plan]string{
	quotes.PlanPerPage: "Plan A - price per page",
	quotes.PlanHybrid:  "Plan B - rent plus click",
	quotes.PlanFlatFee: "Plan C - flat fee",
}

func quoteText(q quotes.Quote) string {
	var b strings.Builder
	title := q.Title
	if title == "" {
		title = "Quote"
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Ref: %s\n", q.Ref)
	fmt.Fprintf(&b, "Date: %s\n", q.CreatedAt)
	fmt.Fprintf(&b, "%s\n\n", planLabels[q.Plan])

	keys := make([]string, 0, len(q.Totals))
	for k := range q.Totals {
		if k != "total" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, formatFigure(k, q.Totals[k]))
	}
	fmt.Fprintf(&b, "\nMonthly total: %s\n", decimal.NewFromFloat(q.Totals["total"]).StringFixed(2))

	if notes := strings.TrimSpace(q.Notes); notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", notes)
	}
	return b.String()
}

func formatFigure(key string, v float64) string {
	switch key {
	case "included_pages":
		return decimal.NewFromFloat(v).StringFixed(0)
	case "price_per_page", "click", "overage_price":
		return decimal.NewFromFloat(v).StringFixed(4)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
