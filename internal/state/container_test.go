package state

import (
	"context"
	"testing"

	"deltafin/internal/core"
	"deltafin/internal/log"
	"deltafin/internal/store"
	"deltafin/internal/store/memory"
)

func newTestContainer(t *testing.T) (*Container, *memory.Store) {
	t.Helper()
	s := memory.NewSeeded([]core.Category{
		{Name: "Salário", Type: core.Credit},
		{Name: "Moradia", Type: core.Debit},
	})
	c := NewContainer(s, log.New(log.DefaultConfig()))
	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return c, s
}

func TestLoadAll(t *testing.T) {
	c, _ := newTestContainer(t)

	if got := len(c.Categories()); got != 2 {
		t.Fatalf("expected 2 categories, got %d", got)
	}
	if got := len(c.Transactions()); got != 0 {
		t.Fatalf("expected empty transactions, got %d", got)
	}
	for i, st := range []Status{c.CategoryStatus(), c.TransactionStatus(), c.GoalStatus()} {
		if st.Busy || st.Err != nil {
			t.Fatalf("status %d should be idle and clean: %+v", i, st)
		}
	}
}

func TestCreateTransactionRefreshesSnapshot(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	created, err := c.CreateTransaction(ctx, core.Transaction{
		Amount:       core.Money{Cents: 520000},
		CategoryName: "Salário",
		Date:         core.NewDate(2025, 8, 1),
		Type:         core.Credit,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	txs := c.Transactions()
	if len(txs) != 1 || txs[0].ID != created.ID {
		t.Fatalf("snapshot not refreshed: %+v", txs)
	}
}

func TestCreateTransactionValidationDoesNotTouchSnapshot(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := c.CreateTransaction(context.Background(), core.Transaction{
		Amount: core.Money{},
		Date:   core.NewDate(2025, 8, 1),
		Type:   core.Debit,
	})
	if !store.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(c.Transactions()) != 0 {
		t.Fatalf("snapshot must stay empty after a rejected write")
	}
}

func TestDeleteCategoryRefreshesBothLists(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	if _, err := c.CreateTransaction(ctx, core.Transaction{
		Amount:       core.Money{Cents: 1000},
		CategoryName: "Moradia",
		Date:         core.NewDate(2025, 8, 2),
		Type:         core.Debit,
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	var moradiaID string
	for _, cat := range c.Categories() {
		if cat.Name == "Moradia" {
			moradiaID = cat.ID
		}
	}
	if err := c.DeleteCategory(ctx, moradiaID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	if got := len(c.Categories()); got != 1 {
		t.Fatalf("expected 1 category left, got %d", got)
	}
	txs := c.Transactions()
	if len(txs) != 1 || txs[0].CategoryName != "" {
		t.Fatalf("transaction snapshot should show the cleared reference: %+v", txs)
	}
}

func TestAddContributionRefreshesGoals(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	goal, err := c.CreateGoal(ctx, core.SavingsGoal{
		Name:         "Reserva",
		TargetAmount: core.Money{Cents: 1000000},
		TargetDate:   core.NewDate(2026, 12, 31),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	updated, err := c.AddContribution(ctx, goal.ID, core.GoalContribution{Amount: core.Money{Cents: 250000}})
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.CurrentAmount.Cents != 250000 {
		t.Fatalf("expected 250000 accumulated, got %d", updated.CurrentAmount.Cents)
	}

	goals := c.Goals()
	if len(goals) != 1 || goals[0].CurrentAmount.Cents != 250000 {
		t.Fatalf("goal snapshot stale: %+v", goals)
	}

	ledger, err := c.ListContributions(ctx, goal.ID)
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(ledger))
	}
}

func TestTransactionsForMonth(t *testing.T) {
	c, _ := newTestContainer(t)
	ctx := context.Background()

	for _, d := range []core.Date{core.NewDate(2025, 8, 1), core.NewDate(2025, 7, 15)} {
		if _, err := c.CreateTransaction(ctx, core.Transaction{
			Amount: core.Money{Cents: 1000},
			Date:   d,
			Type:   core.Debit,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	month := core.NewDate(2025, 8, 1).Time
	txs, err := c.TransactionsForMonth(ctx, month)
	if err != nil {
		t.Fatalf("month fetch: %v", err)
	}
	if len(txs) != 1 || txs[0].Date.ISO() != "2025-08-01" {
		t.Fatalf("unexpected month result %+v", txs)
	}
}
