package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"deltafin/internal/core"
)

const xlsxSheet = "Transações"

var xlsxColWidths = [...]float64{12, 35, 18, 20, 12, 15}

// WriteXLSX renders the transactions as a spreadsheet. Amounts stay numeric
// with a BRL number format so they remain usable in formulas.
func WriteXLSX(w io.Writer, transactions []core.Transaction, now time.Time) error {
	s := Summarize(transactions)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, width := range xlsxColWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(xlsxSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	header := make([]any, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	currencyFmt := `"R$" #,##0.00`
	creditStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &currencyFmt,
		Font:         &excelize.Font{Bold: true, Color: "3B82F6"},
	})
	if err != nil {
		return fmt.Errorf("credit style: %w", err)
	}
	debitStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &currencyFmt,
		Font:         &excelize.Font{Bold: true, Color: "EF4444"},
	})
	if err != nil {
		return fmt.Errorf("debit style: %w", err)
	}

	row := 2
	for _, t := range transactions {
		cell := fmt.Sprintf("A%d", row)
		err := f.SetSheetRow(xlsxSheet, cell, &[]any{
			core.FormatToBrazilian(t.Date.Time),
			description(t),
			categoryName(t),
			joinTags(t.Tags),
			typeLabel(t),
			t.Amount.Reais(),
		})
		if err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}

		style := debitStyle
		if t.Type == core.Credit {
			style = creditStyle
		}
		typeCell := fmt.Sprintf("E%d", row)
		valueCell := fmt.Sprintf("F%d", row)
		if err := f.SetCellStyle(xlsxSheet, typeCell, typeCell, style); err != nil {
			return fmt.Errorf("style type cell: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, valueCell, valueCell, style); err != nil {
			return fmt.Errorf("style value cell: %w", err)
		}
		row++
	}

	row++ // blank line before the summary block
	summaryRows := []struct {
		label string
		value any
	}{
		{"RESUMO", nil},
		{"Total de Receitas", s.TotalIncome.Reais()},
		{"Total de Despesas", s.TotalExpenses.Reais()},
		{"Saldo", s.Balance.Reais()},
	}
	for _, sr := range summaryRows {
		values := []any{sr.label, "", "", "", "", ""}
		if sr.value != nil {
			values[5] = sr.value
		}
		if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
		row++
	}

	row++ // blank line before the generation stamp
	stamp := fmt.Sprintf("Relatório gerado em: %s às %s",
		core.FormatToBrazilian(now), now.Format("15:04:05"))
	if err := f.SetCellValue(xlsxSheet, fmt.Sprintf("A%d", row), stamp); err != nil {
		return fmt.Errorf("write generation stamp: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
