// Package sheets appends transaction exports to a Google spreadsheet using
// service account credentials.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"deltafin/internal/core"
	"deltafin/internal/export"
	"deltafin/internal/log"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// Config carries the spreadsheet target and service account credentials.
// Exactly one of CredentialsFile or CredentialsJSON must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

func NewClient(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// Append appends the transactions to the configured sheet, one row each, in
// the same column layout as the file exports.
func (c *Client) Append(ctx context.Context, transactions []core.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(transactions))
	for _, t := range transactions {
		label := "Despesa"
		if t.Type == core.Credit {
			label = "Receita"
		}
		category := t.CategoryName
		if category == "" {
			category = "Sem categoria"
		}
		description := t.Description
		if description == "" {
			description = "Sem descrição"
		}
		values = append(values, []any{
			core.FormatToBrazilian(t.Date.Time),
			description,
			category,
			strings.Join(t.Tags, ", "),
			label,
			t.Amount.Reais(),
		})
	}

	rangeRef := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet: %w", err)
	}

	appended := 0
	if resp.Updates != nil {
		appended = int(resp.Updates.UpdatedRows)
	}
	c.logger.InfoContext(ctx, "Appended transactions to spreadsheet",
		log.FieldCount, appended,
		"sheet", c.sheetName)
	return appended, nil
}

// AppendSummary appends the summary block after an export batch.
func (c *Client) AppendSummary(ctx context.Context, s export.Summary) error {
	values := [][]any{
		{"RESUMO", "", "", "", "", ""},
		{"Total de Receitas", "", "", "", "", s.TotalIncome.Reais()},
		{"Total de Despesas", "", "", "", "", s.TotalExpenses.Reais()},
		{"Saldo", "", "", "", "", s.Balance.Reais()},
	}

	rangeRef := fmt.Sprintf("%s!A:F", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary to sheet: %w", err)
	}
	return nil
}
