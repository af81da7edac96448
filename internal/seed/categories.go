// Package seed holds the default category dataset installed on first run.
package seed

import "deltafin/internal/core"

// DefaultCategories returns the stock category set, credits then debits, each
// with a stable display order.
func DefaultCategories() []core.Category {
	return []core.Category{
		{Name: "Salário", Icon: "💰", Type: core.Credit, IsDefault: true, Order: 1},
		{Name: "Freelance", Icon: "💻", Type: core.Credit, IsDefault: true, Order: 2},
		{Name: "Presente", Icon: "🎁", Type: core.Credit, IsDefault: true, Order: 3},
		{Name: "Vendas", Icon: "🛒", Type: core.Credit, IsDefault: true, Order: 4},
		{Name: "Emprestimo", Icon: "💵", Type: core.Credit, IsDefault: true, Order: 5},
		{Name: "Outras Receitas", Icon: "📈", Type: core.Credit, IsDefault: true, Order: 6},

		{Name: "Alimentação", Icon: "🍽️", Type: core.Debit, IsDefault: true, Order: 1},
		{Name: "Moradia", Icon: "🏠", Type: core.Debit, IsDefault: true, Order: 2},
		{Name: "Lazer", Icon: "🎮", Type: core.Debit, IsDefault: true, Order: 3},
		{Name: "Saúde", Icon: "🏥", Type: core.Debit, IsDefault: true, Order: 4},
		{Name: "Transporte", Icon: "🚗", Type: core.Debit, IsDefault: true, Order: 5},
		{Name: "Educação", Icon: "📚", Type: core.Debit, IsDefault: true, Order: 6},
		{Name: "Dividas", Icon: "💳", Type: core.Debit, IsDefault: true, Order: 7},
		{Name: "Outras Despesas", Icon: "💸", Type: core.Debit, IsDefault: true, Order: 8},
	}
}
