package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/export"
	"deltafin/internal/log"
)

// exportTransactions resolves the list to export: the whole history, or one
// month when ?month=YYYY-MM is present. On failure the error response has
// already been written: 400 for a malformed month, the store error mapping
// otherwise.
func (s *Server) exportTransactions(w http.ResponseWriter, r *http.Request) ([]core.Transaction, bool) {
	month, ok := parseMonth(r)
	if !ok {
		respondBadRequest(w, "invalid month: expected YYYY-MM")
		return nil, false
	}
	if month == nil {
		return s.container.Transactions(), true
	}
	transactions, err := s.container.TransactionsForMonth(r.Context(), *month)
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return transactions, true
}

func attachmentHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	transactions, ok := s.exportTransactions(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, transactions); err != nil {
		respondError(w, r, err)
		return
	}

	attachmentHeaders(w, "text/csv; charset=utf-8", export.Filename("csv", s.now()))
	_, _ = w.Write(buf.Bytes())
	s.logExport(r, "csv", len(transactions))
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	transactions, ok := s.exportTransactions(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, transactions, s.now()); err != nil {
		respondError(w, r, err)
		return
	}

	attachmentHeaders(w, "application/pdf", export.Filename("pdf", s.now()))
	_, _ = w.Write(buf.Bytes())
	s.logExport(r, "pdf", len(transactions))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	transactions, ok := s.exportTransactions(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, transactions, s.now()); err != nil {
		respondError(w, r, err)
		return
	}

	attachmentHeaders(w,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		export.Filename("xlsx", s.now()))
	_, _ = w.Write(buf.Bytes())
	s.logExport(r, "xlsx", len(transactions))
}

// handleExportSheets appends the transactions to the configured Google
// spreadsheet. Returns 503 when the export target is not configured.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondJSON(w, http.StatusServiceUnavailable,
			errorResponse{Error: "Google Sheets export is not configured"})
		return
	}

	transactions, ok := s.exportTransactions(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	appended, err := s.exporter.Append(ctx, transactions)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.exporter.AppendSummary(ctx, export.Summarize(transactions)); err != nil {
		respondError(w, r, err)
		return
	}

	s.logExport(r, "sheets", appended)
	respondJSON(w, http.StatusOK, map[string]int{"appended": appended})
}

func (s *Server) logExport(r *http.Request, format string, count int) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export generated",
		log.FieldOperation, log.OpExport,
		log.FieldFormat, format,
		log.FieldCount, count)
}
