package seed

import (
	"time"

	"deltafin/internal/core"
)

// SampleTransactions returns a small demo set spread over the first days of
// now's month, referencing the default categories.
func SampleTransactions(now time.Time) []core.Transaction {
	day := func(d int) core.Date {
		return core.NewDate(now.Year(), int(now.Month()), d)
	}

	return []core.Transaction{
		{Amount: core.Money{Cents: 520000}, Description: "Salário mensal", CategoryName: "Salário", Date: day(1), Type: core.Credit},
		{Amount: core.Money{Cents: 120000}, Description: "Aluguel", CategoryName: "Moradia", Date: day(2), Tags: []string{"fixo"}, Type: core.Debit},
		{Amount: core.Money{Cents: 45000}, Description: "Supermercado", CategoryName: "Alimentação", Date: day(3), Tags: []string{"mercado"}, Type: core.Debit},
		{Amount: core.Money{Cents: 18000}, Description: "Combustível", CategoryName: "Transporte", Date: day(4), Type: core.Debit},
		{Amount: core.Money{Cents: 80000}, Description: "Projeto freelance", CategoryName: "Freelance", Date: day(5), Type: core.Credit},
		{Amount: core.Money{Cents: 9900}, Description: "Cinema", CategoryName: "Lazer", Date: day(6), Tags: []string{"fim de semana"}, Type: core.Debit},
	}
}
