package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/mpsdeal/internal/quotes"
)

func withRef(req *http.Request, ref string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("ref", ref)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleQuoteDetailReadsSnapshotWithoutRecalculation(t *testing.T) {
	srv := newTestServer(t)
	ref := seedQuote(t, srv, "2024-02-01 09:30:00", "Acme", "36 meses", `{"total": 999.99, "price_per_page": 0.0482}`)

	rr := httptest.NewRecorder()
	srv.handleQuoteDetail(rr, withRef(httptest.NewRequest(http.MethodGet, "/api/quotes/"+ref, nil), ref))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var q quotes.Quote
	decodeBody(t, rr, &q)
	if q.Totals["total"] != 999.99 || q.Totals["price_per_page"] != 0.0482 {
		t.Fatalf("unexpected snapshot totals: %+v", q.Totals)
	}
	if q.Plan != quotes.PlanPerPage || q.Notes != "36 meses" {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestHandleQuoteDetailNotFound(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.handleQuoteDetail(rr, withRef(httptest.NewRequest(http.MethodGet, "/api/quotes/missing", nil), "missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleQuoteTextReturnsPlainText(t *testing.T) {
	srv := newTestServer(t)
	ref := seedQuote(t, srv, "2024-02-01 09:30:00", "Acme", "Incluye papel", `{"total": 999.99, "price_per_page": 0.04821}`)

	rr := httptest.NewRecorder()
	srv.handleQuoteText(rr, withRef(httptest.NewRequest(http.MethodGet, "/api/quotes/"+ref+"/text", nil), ref))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", rr.Header().Get("Content-Type"))
	}

	body := rr.Body.String()
	for _, expected := range []string{"Acme", "Ref: " + ref, "Plan A - price per page", "price_per_page: 0.0482", "Monthly total: 999.99", "Notes:\nIncluye papel"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}
