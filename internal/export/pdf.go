package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"deltafin/internal/core"
)

var ptMonths = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", ptMonths[t.Month()-1], t.Year())
}

var pdfColWidths = [...]float64{20, 45, 28, 22, 18, 25}

type monthGroup struct {
	key          string
	label        string
	transactions []core.Transaction
	income       core.Money
	expenses     core.Money
}

func groupByMonth(transactions []core.Transaction) []monthGroup {
	byKey := map[string]*monthGroup{}
	var keys []string
	for _, t := range transactions {
		key := t.Date.Format("2006-01")
		g, ok := byKey[key]
		if !ok {
			g = &monthGroup{key: key, label: monthLabel(t.Date.Time)}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.transactions = append(g.transactions, t)
		if t.Type == core.Credit {
			g.income.Cents += t.Amount.Cents
		} else {
			g.expenses.Cents += t.Amount.Cents
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]monthGroup, 0, len(keys))
	for _, key := range keys {
		out = append(out, *byKey[key])
	}
	return out
}

// WritePDF renders the transactions as a PDF report: a summary header
// followed by one table per month, newest month first.
func WritePDF(w io.Writer, transactions []core.Transaction, now time.Time) error {
	s := Summarize(transactions)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", 20)
	pdf.Text(20, 20, tr("Relatório de Transações"))

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 30, tr(fmt.Sprintf("Gerado em: %s às %s",
		core.FormatToBrazilian(now), now.Format("15:04:05"))))

	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(20, 45, "Resumo:")

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 55, tr(fmt.Sprintf("Total de transações: %d", s.Count)))
	pdf.Text(20, 62, tr("Total de receitas: "+s.TotalIncome.FormatBRL()))
	pdf.Text(20, 69, tr("Total de despesas: "+s.TotalExpenses.FormatBRL()))
	pdf.Text(20, 76, tr("Saldo: "+s.Balance.FormatBRL()))

	y := 85.0
	for _, g := range groupByMonth(transactions) {
		if y > 250 {
			pdf.AddPage()
			y = 20
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(20, y, tr(g.label))
		y += 10

		pdf.SetFont("Helvetica", "", 9)
		balance := core.Money{Cents: g.income.Cents - g.expenses.Cents}
		pdf.Text(20, y, tr(fmt.Sprintf("Receitas: %s | Despesas: %s | Saldo: %s",
			g.income.FormatBRL(), g.expenses.FormatBRL(), balance.FormatBRL())))
		y += 10

		y = writeMonthTable(pdf, tr, g, y)
		y += 15
	}

	return pdf.Output(w)
}

func writeMonthTable(pdf *fpdf.Fpdf, tr func(string) string, g monthGroup, y float64) float64 {
	const rowHeight = 6.0

	pdf.SetXY(20, y)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(66, 139, 202)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range csvHeader {
		pdf.CellFormat(pdfColWidths[i], rowHeight, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(rowHeight)

	for i, t := range g.transactions {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			pdf.SetY(20)
		}
		pdf.SetX(20)

		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)

		credit := t.Type == core.Credit

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(pdfColWidths[0], rowHeight, core.FormatToBrazilian(t.Date.Time), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(pdfColWidths[1], rowHeight, tr(description(t)), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(pdfColWidths[2], rowHeight, tr(categoryName(t)), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(pdfColWidths[3], rowHeight, tr(joinTags(t.Tags)), "1", 0, "L", fill, 0, "")

		// Blue for credits, red for debits.
		if credit {
			pdf.SetTextColor(59, 130, 246)
		} else {
			pdf.SetTextColor(239, 68, 68)
		}
		pdf.CellFormat(pdfColWidths[4], rowHeight, typeLabel(t), "1", 0, "L", fill, 0, "")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(pdfColWidths[5], rowHeight, tr(t.Amount.FormatBRL()), "1", 0, "R", fill, 0, "")

		pdf.Ln(rowHeight)
	}

	pdf.SetTextColor(0, 0, 0)
	return pdf.GetY()
}
