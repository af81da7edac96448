package export

import (
	"io"
	"strings"

	"deltafin/internal/core"
)

var csvHeader = []string{"Data", "Descrição", "Categoria", "Tag", "Tipo", "Valor"}

// WriteCSV renders the transactions as CSV. Every field is double-quoted and
// the output starts with a UTF-8 BOM so spreadsheet applications pick up the
// encoding. A summary block follows the rows after one blank line.
func WriteCSV(w io.Writer, transactions []core.Transaction) error {
	s := Summarize(transactions)

	lines := make([][]string, 0, len(transactions)+6)
	for _, t := range transactions {
		lines = append(lines, []string{
			core.FormatToBrazilian(t.Date.Time),
			description(t),
			categoryName(t),
			joinTags(t.Tags),
			typeLabel(t),
			t.Amount.FormatBRL(),
		})
	}

	empty := make([]string, len(csvHeader))
	lines = append(lines,
		empty,
		[]string{"RESUMO", "", "", "", "", ""},
		[]string{"Total de Receitas", "", "", "", "", s.TotalIncome.FormatBRL()},
		[]string{"Total de Despesas", "", "", "", "", s.TotalExpenses.FormatBRL()},
		[]string{"Saldo", "", "", "", "", s.Balance.FormatBRL()},
	)

	var b strings.Builder
	b.WriteString("\uFEFF")
	writeCSVLine(&b, csvHeader)
	for _, line := range lines {
		b.WriteByte('\n')
		writeCSVLine(&b, line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeCSVLine quotes every field unconditionally, doubling embedded quotes.
// encoding/csv only quotes when needed, which would change the file shape.
func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
