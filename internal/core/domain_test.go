package core

import (
	"strings"
	"testing"
)

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Alimentação", Icon: "🍽️", Type: Debit}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{Name: "", Type: Debit},
		{Name: "   ", Type: Debit},
		{Name: strings.Repeat("x", 101), Type: Debit},
		{Name: "ok", Type: "transfer"},
		{Name: "ok", Type: ""},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount: Money{Cents: 120000},
		Date:   NewDate(2025, 8, 2),
		Type:   Debit,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 0}, Date: NewDate(2025, 8, 2), Type: Debit},
		{Amount: Money{Cents: -100}, Date: NewDate(2025, 8, 2), Type: Debit},
		{Amount: Money{Cents: 100}, Date: Date{}, Type: Debit},
		{Amount: Money{Cents: 100}, Date: NewDate(2025, 8, 2), Type: "other"},
		{Amount: Money{Cents: 100}, Date: NewDate(2025, 8, 2), Type: Debit, Description: strings.Repeat("x", 201)},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	good := SavingsGoal{
		Name:         "Reserva de emergência",
		TargetAmount: Money{Cents: 1000000},
		TargetDate:   NewDate(2026, 12, 31),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []SavingsGoal{
		{Name: "", TargetAmount: Money{Cents: 100}, TargetDate: NewDate(2026, 1, 1)},
		{Name: "ok", TargetAmount: Money{Cents: 0}, TargetDate: NewDate(2026, 1, 1)},
		{Name: "ok", TargetAmount: Money{Cents: 100}, CurrentAmount: Money{Cents: -1}, TargetDate: NewDate(2026, 1, 1)},
		{Name: "ok", TargetAmount: Money{Cents: 100}, TargetDate: Date{}},
	}
	for i, g := range bads {
		if err := g.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalContributionValidate(t *testing.T) {
	good := GoalContribution{GoalID: "g1", Amount: Money{Cents: 5000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (GoalContribution{GoalID: "", Amount: Money{Cents: 5000}}).Validate(); err == nil {
		t.Fatalf("expected error for empty goal id")
	}
	if err := (GoalContribution{GoalID: "g1", Amount: Money{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}
