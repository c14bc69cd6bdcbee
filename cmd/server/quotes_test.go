package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestHandleQuotesListOrdersByDateDescAndFilters(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv, "2024-01-01 10:00:00", "Banco Central", "renovación de flota", `{"total": 100.50}`)
	seedQuote(t, srv, "2024-01-03 12:00:00", "Colegio", "sede del banco", `{"total": 300.00}`)
	seedQuote(t, srv, "2024-01-02 11:00:00", "Clínica Norte", "cliente vip", `{"total": 200.25}`)

	rr := httptest.NewRecorder()
	srv.handleQuotesList(rr, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var all struct {
		Query  string `json:"query"`
		Quotes []struct {
			Title string  `json:"title"`
			Total float64 `json:"total"`
		} `json:"quotes"`
	}
	decodeBody(t, rr, &all)
	if len(all.Quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(all.Quotes))
	}
	if all.Quotes[0].Title != "Colegio" || all.Quotes[1].Title != "Clínica Norte" || all.Quotes[2].Title != "Banco Central" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", all.Quotes)
	}
	if all.Quotes[0].Total != 300.00 || all.Quotes[1].Total != 200.25 || all.Quotes[2].Total != 100.50 {
		t.Fatalf("unexpected totals: %+v", all.Quotes)
	}

	rr = httptest.NewRecorder()
	srv.handleQuotesList(rr, httptest.NewRequest(http.MethodGet, "/api/quotes?q=+banco+", nil))
	var filtered struct {
		Query  string `json:"query"`
		Quotes []struct {
			Title string `json:"title"`
		} `json:"quotes"`
	}
	decodeBody(t, rr, &filtered)
	if filtered.Query != "banco" || len(filtered.Quotes) != 2 {
		t.Fatalf("expected 2 quotes filtered by notes/title, got %+v", filtered)
	}
}

func seedQuote(t *testing.T, srv *server, createdAt, title, notes, totalsJSON string) string {
	t.Helper()

	db := srv.auth.db
	var projectID int64
	err := db.Get(&projectID, `SELECT id FROM projects ORDER BY id LIMIT 1`)
	if err != nil {
		res, err := db.Exec(`INSERT INTO projects (name, margin, overage_penalty, horizon_months) VALUES ('Acme', 0.3, 1.15, 36)`)
		if err != nil {
			t.Fatalf("failed inserting project: %v", err)
		}
		projectID, _ = res.LastInsertId()
	}

	ref := uuid.NewString()
	_, err = db.ExecContext(context.Background(), `
		INSERT INTO quotes (ref, project_id, created_at, title, notes, plan, totals_json)
		VALUES (?, ?, ?, ?, ?, 'per_page', ?)
	`, ref, projectID, createdAt, title, notes, totalsJSON)
	if err != nil {
		t.Fatalf("failed seeding quote: %v", err)
	}
	return ref
}
