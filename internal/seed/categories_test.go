package seed

import (
	"testing"
	"time"

	"deltafin/internal/core"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 14 {
		t.Fatalf("expected 14 default categories, got %d", len(cats))
	}

	seen := map[string]bool{}
	orders := map[core.TransactionType]int{}
	for _, c := range cats {
		if err := c.Validate(); err != nil {
			t.Fatalf("category %q invalid: %v", c.Name, err)
		}
		if !c.IsDefault {
			t.Fatalf("category %q must be marked default", c.Name)
		}
		if c.Icon == "" {
			t.Fatalf("category %q missing icon", c.Name)
		}
		if seen[c.Name] {
			t.Fatalf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true

		// Order runs 1..n within each type.
		orders[c.Type]++
		if c.Order != orders[c.Type] {
			t.Fatalf("category %q: expected order %d, got %d", c.Name, orders[c.Type], c.Order)
		}
	}

	if orders[core.Credit] != 6 || orders[core.Debit] != 8 {
		t.Fatalf("expected 6 credit and 8 debit categories, got %d/%d",
			orders[core.Credit], orders[core.Debit])
	}
}

func TestSampleTransactions(t *testing.T) {
	now := time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC)
	names := map[string]bool{}
	for _, c := range DefaultCategories() {
		names[c.Name] = true
	}

	samples := SampleTransactions(now)
	if len(samples) == 0 {
		t.Fatalf("expected sample transactions")
	}
	for _, tx := range samples {
		if err := tx.Validate(); err != nil {
			t.Fatalf("sample %q invalid: %v", tx.Description, err)
		}
		if !names[tx.CategoryName] {
			t.Fatalf("sample %q references unknown category %q", tx.Description, tx.CategoryName)
		}
		if tx.Date.Year() != 2025 || tx.Date.Month() != time.August {
			t.Fatalf("sample %q dated outside the current month: %s", tx.Description, tx.Date.ISO())
		}
	}
}
