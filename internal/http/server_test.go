package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/state"
	"deltafin/internal/store"
	"deltafin/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	container := state.NewContainer(memory.New(), log.New(log.DefaultConfig()))
	if err := container.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	s := NewServer(":0", container, nil, log.New(log.DefaultConfig()))
	s.now = func() time.Time { return time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC) }
	return s
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if rec := doJSON(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/categories",
		`{"name":"Moradia","icon":"🏠","type":"debit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Category](t, rec)
	if created.ID == "" || created.Name != "Moradia" {
		t.Fatalf("unexpected created category %+v", created)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/categories", "")
	cats := decode[[]core.Category](t, rec)
	if len(cats) != 1 {
		t.Fatalf("expected 1 category, got %d", len(cats))
	}

	rec = doJSON(t, s, http.MethodPut, "/api/categories/"+created.ID, `{"name":"Casa"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.Category](t, rec); got.Name != "Casa" || got.Icon != "🏠" {
		t.Fatalf("partial update wrong: %+v", got)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/categories", `{"name":"","type":"debit"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]string](t, rec)
	if resp["kind"] != "validation" {
		t.Fatalf("expected validation kind, got %v", resp)
	}

	// Unknown fields are rejected outright.
	rec = doJSON(t, s, http.MethodPost, "/api/categories", `{"name":"x","type":"debit","bogus":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":5200,"description":"Salário","category_name":"Salário","date":"2025-08-01","type":"credit"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Transaction](t, rec)
	if created.Amount.Cents != 520000 || created.Date.ISO() != "2025-08-01" {
		t.Fatalf("unexpected created transaction %+v", created)
	}
	if created.Tags == nil {
		t.Fatalf("tags must serialize as an empty array, not null")
	}

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/"+created.ID, `{"amount":4800.50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.Transaction](t, rec); got.Amount.Cents != 480050 {
		t.Fatalf("expected 480050 cents, got %d", got.Amount.Cents)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
}

func TestListTransactionsMonthParam(t *testing.T) {
	s := newTestServer(t)

	for _, date := range []string{"2025-08-01", "2025-07-15"} {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions",
			fmt.Sprintf(`{"amount":100,"date":%q,"type":"debit"}`, date))
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: got %d", date, rec.Code)
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/transactions?month=2025-08", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if txs := decode[[]core.Transaction](t, rec); len(txs) != 1 {
		t.Fatalf("expected 1 transaction in August, got %d", len(txs))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?month=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}
}

func TestMonthlyReport(t *testing.T) {
	s := newTestServer(t)

	seed := []string{
		`{"amount":5200,"date":"2025-08-01","type":"credit"}`,
		`{"amount":1200,"category_name":"Moradia","date":"2025-08-02","type":"debit"}`,
		`{"amount":350,"category_name":"Alimentação","date":"2025-08-05","type":"debit"}`,
	}
	for _, body := range seed {
		if rec := doJSON(t, s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: got %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/reports/monthly?month=2025-08", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stats := decode[map[string]json.Number](t, rec)
	if stats["income"].String() != "5200.00" ||
		stats["expenses"].String() != "1550.00" ||
		stats["balance"].String() != "3650.00" {
		t.Fatalf("unexpected stats %v", stats)
	}
	if stats["transaction_count"].String() != "3" {
		t.Fatalf("expected 3 transactions, got %v", stats["transaction_count"])
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/balance", "")
	balance := decode[map[string]json.Number](t, rec)
	if balance["total_balance"].String() != "3650.00" {
		t.Fatalf("unexpected balance %v", balance)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/categories?month=2025-08", "")
	breakdown := decode[[]map[string]any](t, rec)
	if len(breakdown) != 2 || breakdown[0]["name"] != "Moradia" {
		t.Fatalf("unexpected breakdown %v", breakdown)
	}
}

func TestReportCacheInvalidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/reports/balance", "")
	first := decode[map[string]json.Number](t, rec)
	if first["total_balance"].String() != "0.00" {
		t.Fatalf("expected empty balance, got %v", first)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":100,"date":"2025-08-01","type":"credit"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/balance", "")
	second := decode[map[string]json.Number](t, rec)
	if second["total_balance"].String() != "100.00" {
		t.Fatalf("cache not invalidated after write: %v", second)
	}
}

func TestGoalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/goals",
		`{"name":"Reserva","target_amount":10000,"target_date":"2026-12-31"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := decode[core.SavingsGoal](t, rec)
	if goal.CurrentAmount.Cents != 0 {
		t.Fatalf("goal must start empty, got %d", goal.CurrentAmount.Cents)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/goals/"+goal.ID+"/contributions",
		`{"amount":2500,"description":"aporte inicial"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[core.SavingsGoal](t, rec)
	if updated.CurrentAmount.Cents != 250000 {
		t.Fatalf("expected 250000 accumulated, got %d", updated.CurrentAmount.Cents)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/goals/"+goal.ID+"/contributions", "")
	ledger := decode[[]core.GoalContribution](t, rec)
	if len(ledger) != 1 || ledger[0].Amount.Cents != 250000 {
		t.Fatalf("unexpected ledger %+v", ledger)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/goals/"+goal.ID+"?months=5&monthly=1500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("goal report: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report goalReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Progress.Percentage != 25 {
		t.Fatalf("expected 25%%, got %v", report.Progress.Percentage)
	}
	if report.Recommended == nil || report.Recommended.Cents != 150000 {
		t.Fatalf("unexpected recommended contribution %+v", report.Recommended)
	}
	if report.Estimated == nil || report.Estimated.Months != 5 {
		t.Fatalf("unexpected estimate %+v", report.Estimated)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/goals/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown goal, got %d", rec.Code)
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	s := newTestServer(t)

	if rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"amount":5200,"description":"Salário","date":"2025-08-01","type":"credit"}`); rec.Code != http.StatusCreated {
		t.Fatalf("seed: got %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="transacoes_2025-08-20.csv"` {
		t.Fatalf("unexpected disposition %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\uFEFF") {
		t.Fatalf("CSV must start with a BOM")
	}
	if !strings.Contains(body, `"Total de Receitas","","","","","R$ 5.200,00"`) {
		t.Fatalf("summary row missing:\n%s", body)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/export/csv?month=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}
}

// monthFailingStore simulates a remote outage on month-filtered listings.
type monthFailingStore struct {
	store.Store
}

func (s monthFailingStore) ListTransactions(ctx context.Context, month *time.Time) ([]core.Transaction, error) {
	if month != nil {
		return nil, store.NewError(store.KindNetwork, "remote.ListTransactions", errors.New("connection refused"))
	}
	return s.Store.ListTransactions(ctx, month)
}

func TestExportStoreErrorMapping(t *testing.T) {
	container := state.NewContainer(monthFailingStore{memory.New()}, log.New(log.DefaultConfig()))
	if err := container.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	s := NewServer(":0", container, nil, log.New(log.DefaultConfig()))
	s.now = func() time.Time { return time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC) }

	for _, path := range []string{
		"/api/export/csv?month=2025-08",
		"/api/export/pdf?month=2025-08",
		"/api/export/xlsx?month=2025-08",
	} {
		rec := doJSON(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("%s: expected 502 for store failure, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if resp := decode[errorResponse](t, rec); resp.Kind != string(store.KindNetwork) {
			t.Fatalf("%s: expected network kind, got %q", path, resp.Kind)
		}
	}

	// A malformed month is still the client's fault.
	if rec := doJSON(t, s, http.MethodGet, "/api/export/csv?month=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}
}

func TestExportSheetsUnconfigured(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/export/sheets", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without exporter, got %d", rec.Code)
	}
}
