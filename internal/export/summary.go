// Package export renders transaction lists to downloadable files: CSV, PDF
// and XLSX, plus an optional Google Sheets target.
package export

import (
	"fmt"
	"strings"
	"time"

	"deltafin/internal/core"
)

const (
	fallbackDescription = "Sem descrição"
	fallbackCategory    = "Sem categoria"

	labelCredit = "Receita"
	labelDebit  = "Despesa"
)

// Summary aggregates a transaction list for the export footers.
type Summary struct {
	TotalIncome   core.Money
	TotalExpenses core.Money
	Balance       core.Money
	Count         int
}

// Summarize computes income, expenses and balance over the whole list.
func Summarize(transactions []core.Transaction) Summary {
	var s Summary
	s.Count = len(transactions)
	for _, t := range transactions {
		switch t.Type {
		case core.Credit:
			s.TotalIncome.Cents += t.Amount.Cents
		case core.Debit:
			s.TotalExpenses.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.TotalIncome.Cents - s.TotalExpenses.Cents
	return s
}

// Filename builds the default download name, e.g. "transacoes_2025-08-30.csv".
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("transacoes_%s.%s", core.DateOf(now).ISO(), ext)
}

func description(t core.Transaction) string {
	if t.Description == "" {
		return fallbackDescription
	}
	return t.Description
}

func categoryName(t core.Transaction) string {
	if t.CategoryName == "" {
		return fallbackCategory
	}
	return t.CategoryName
}

func typeLabel(t core.Transaction) string {
	if t.Type == core.Credit {
		return labelCredit
	}
	return labelDebit
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
