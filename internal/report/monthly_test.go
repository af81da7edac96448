package report

import (
	"testing"
	"time"

	"deltafin/internal/core"
)

func tx(cents int64, typ core.TransactionType, category string, y, m, d int) core.Transaction {
	return core.Transaction{
		Amount:       core.Money{Cents: cents},
		Type:         typ,
		CategoryName: category,
		Date:         core.NewDate(y, m, d),
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

	// Current month ends today, not at month end.
	start, end := MonthWindow(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), now)
	if start.ISO() != "2025-08-01" || end.ISO() != "2025-08-20" {
		t.Fatalf("current month: got [%s, %s]", start.ISO(), end.ISO())
	}

	// Past months cover the full calendar month.
	start, end = MonthWindow(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), now)
	if start.ISO() != "2025-02-01" || end.ISO() != "2025-02-28" {
		t.Fatalf("past month: got [%s, %s]", start.ISO(), end.ISO())
	}

	// Leap February.
	start, end = MonthWindow(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), now)
	if start.ISO() != "2024-02-01" || end.ISO() != "2024-02-29" {
		t.Fatalf("leap month: got [%s, %s]", start.ISO(), end.ISO())
	}
}

func TestMonthly(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	transactions := []core.Transaction{
		tx(520000, core.Credit, "Salário", 2025, 8, 1),
		tx(120000, core.Debit, "Moradia", 2025, 8, 2),
		tx(35000, core.Debit, "Alimentação", 2025, 8, 5),
		tx(99900, core.Debit, "Lazer", 2025, 7, 31),  // previous month
		tx(10000, core.Debit, "Lazer", 2025, 8, 25),  // future-dated, excluded
	}

	stats := Monthly(transactions, month, now)
	if stats.Income.Cents != 520000 {
		t.Fatalf("income: expected 520000, got %d", stats.Income.Cents)
	}
	if stats.Expenses.Cents != 155000 {
		t.Fatalf("expenses: expected 155000, got %d", stats.Expenses.Cents)
	}
	if stats.Balance.Cents != 365000 {
		t.Fatalf("balance: expected 365000, got %d", stats.Balance.Cents)
	}
	if stats.Count != 3 {
		t.Fatalf("count: expected 3, got %d", stats.Count)
	}
}

func TestMonthlyPastMonthIncludesWholeMonth(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	transactions := []core.Transaction{
		tx(1000, core.Debit, "Lazer", 2025, 7, 31), // last day counts
		tx(2000, core.Debit, "Lazer", 2025, 7, 1),
	}
	stats := Monthly(transactions, month, now)
	if stats.Count != 2 || stats.Expenses.Cents != 3000 {
		t.Fatalf("expected 2 transactions / 3000 cents, got %d / %d", stats.Count, stats.Expenses.Cents)
	}
}

func TestCategoryExpenses(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	transactions := []core.Transaction{
		tx(520000, core.Credit, "Salário", 2025, 8, 1), // credits never appear
		tx(120000, core.Debit, "Moradia", 2025, 8, 2),
		tx(20000, core.Debit, "Alimentação", 2025, 8, 3),
		tx(15000, core.Debit, "Alimentação", 2025, 8, 5),
		tx(5000, core.Debit, "", 2025, 8, 6), // fallback bucket
	}

	got := CategoryExpenses(transactions, month, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}

	// First-seen order, amounts summed per group.
	expected := []CategoryExpense{
		{Name: "Moradia", Amount: core.Money{Cents: 120000}, Color: ChartPalette[0]},
		{Name: "Alimentação", Amount: core.Money{Cents: 35000}, Color: ChartPalette[1]},
		{Name: FallbackCategory, Amount: core.Money{Cents: 5000}, Color: ChartPalette[2]},
	}
	for i, want := range expected {
		if got[i] != want {
			t.Fatalf("group %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}

func TestCategoryExpensesPaletteWraps(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	month := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	var transactions []core.Transaction
	for i := 0; i < len(ChartPalette)+2; i++ {
		name := string(rune('A' + i))
		transactions = append(transactions, tx(100, core.Debit, name, 2025, 8, 1))
	}

	got := CategoryExpenses(transactions, month, now)
	if len(got) != len(ChartPalette)+2 {
		t.Fatalf("expected %d groups, got %d", len(ChartPalette)+2, len(got))
	}
	if got[len(ChartPalette)].Color != ChartPalette[0] {
		t.Fatalf("palette should wrap: got %s", got[len(ChartPalette)].Color)
	}
}

func TestTotalBalance(t *testing.T) {
	transactions := []core.Transaction{
		tx(520000, core.Credit, "", 2025, 8, 1),
		tx(120000, core.Debit, "", 2025, 8, 2),
		tx(300000, core.Credit, "", 2023, 1, 15), // no window: all history counts
		tx(50000, core.Debit, "", 2099, 12, 31),  // even future entries
	}
	if got := TotalBalance(transactions); got.Cents != 650000 {
		t.Fatalf("expected 650000, got %d", got.Cents)
	}
	if got := TotalBalance(nil); got.Cents != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got.Cents)
	}
}
