package postgrest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/store"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "test-key", log.New(log.DefaultConfig())), srv
}

func TestListCategoriesRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey, gotAuth string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]core.Category{{ID: "c1", Name: "Moradia", Type: core.Debit}})
	})
	defer srv.Close()

	cats, err := c.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Moradia" {
		t.Fatalf("unexpected result %+v", cats)
	}
	if gotPath != "/rest/v1/categories" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotQuery != "order=name.asc&select=%2A" {
		t.Fatalf("unexpected query %s", gotQuery)
	}
	if gotAPIKey != "test-key" || gotAuth != "Bearer test-key" {
		t.Fatalf("auth headers wrong: apikey=%q auth=%q", gotAPIKey, gotAuth)
	}
}

func TestCreateTransactionSendsRepresentationPrefer(t *testing.T) {
	var gotPrefer string
	var gotBody map[string]any
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]core.Transaction{{
			ID:     "t1",
			Amount: core.Money{Cents: 520000},
			Date:   core.NewDate(2025, 8, 1),
			Type:   core.Credit,
		}})
	})
	defer srv.Close()

	created, err := c.CreateTransaction(context.Background(), core.Transaction{
		Amount:       core.Money{Cents: 520000},
		CategoryName: "Salário",
		Date:         core.NewDate(2025, 8, 1),
		Type:         core.Credit,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "t1" {
		t.Fatalf("expected echoed row, got %+v", created)
	}
	if gotPrefer != "return=representation" {
		t.Fatalf("expected representation prefer, got %q", gotPrefer)
	}
	if gotBody["amount"] != 5200.0 {
		t.Fatalf("amount must be sent in reais, got %v", gotBody["amount"])
	}
	if gotBody["date"] != "2025-08-01" {
		t.Fatalf("unexpected date %v", gotBody["date"])
	}
}

func TestListTransactionsMonthRange(t *testing.T) {
	var gotDates []string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotDates = r.URL.Query()["date"]
		_ = json.NewEncoder(w).Encode([]core.Transaction{})
	})
	defer srv.Close()

	month := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := c.ListTransactions(context.Background(), &month); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(gotDates) != 2 || gotDates[0] != "gte.2025-02-01" || gotDates[1] != "lte.2025-02-28" {
		t.Fatalf("unexpected date filters %v", gotDates)
	}
}

func TestErrorKindMapping(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusNotFound, store.IsNotFound, "not_found"},
		{http.StatusConflict, store.IsValidation, "validation"},
		{http.StatusInternalServerError, func(err error) bool {
			return store.KindOf(err) == store.KindNetwork
		}, "network"},
	}
	for _, tc := range cases {
		c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"message":"boom"}`))
		})
		_, err := c.ListGoals(context.Background())
		srv.Close()
		if err == nil || !tc.check(err) {
			t.Fatalf("status %d: expected %s kind, got %v", tc.status, tc.name, err)
		}
	}
}

func TestDeleteCategoryClearsReferences(t *testing.T) {
	var patched bool
	var patchFilter string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/rest/v1/categories":
			_ = json.NewEncoder(w).Encode([]core.Category{{ID: "c1", Name: "Lazer", Type: core.Debit}})
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/transactions":
			patched = true
			patchFilter = r.URL.Query().Get("category_name")
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if v, ok := body["category_name"]; !ok || v != nil {
				t.Errorf("expected category_name null, got %v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	})
	defer srv.Close()

	if err := c.DeleteCategory(context.Background(), "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !patched || patchFilter != "eq.Lazer" {
		t.Fatalf("reference clear missing or wrong: patched=%v filter=%q", patched, patchFilter)
	}
}

func TestAddContribution(t *testing.T) {
	var calls []string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/savings_goals":
			_ = json.NewEncoder(w).Encode([]core.SavingsGoal{{
				ID:            "g1",
				Name:          "Reserva",
				TargetAmount:  core.Money{Cents: 1000000},
				CurrentAmount: core.Money{Cents: 100000},
				TargetDate:    core.NewDate(2026, 12, 31),
			}})
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/goal_contributions":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPatch && r.URL.Path == "/rest/v1/savings_goals":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["current_amount"] != 1500.0 {
				t.Errorf("expected new amount 1500.00, got %v", body["current_amount"])
			}
			_ = json.NewEncoder(w).Encode([]core.SavingsGoal{{
				ID:            "g1",
				CurrentAmount: core.Money{Cents: 150000},
			}})
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	})
	defer srv.Close()

	goal, err := c.AddContribution(context.Background(), "g1", core.GoalContribution{Amount: core.Money{Cents: 50000}})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if goal.CurrentAmount.Cents != 150000 {
		t.Fatalf("expected 150000, got %d", goal.CurrentAmount.Cents)
	}
	if len(calls) != 3 {
		t.Fatalf("expected read+insert+patch, got %v", calls)
	}
}
