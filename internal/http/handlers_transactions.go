package http

import (
	"net/http"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/store"
)

type transactionRequest struct {
	Amount       core.Money           `json:"amount"`
	Description  string               `json:"description"`
	CategoryName string               `json:"category_name"`
	Date         core.Date            `json:"date"`
	Tags         []string             `json:"tags"`
	Type         core.TransactionType `json:"type"`
}

type transactionUpdateRequest struct {
	Amount       *core.Money           `json:"amount"`
	Description  *string               `json:"description"`
	CategoryName *string               `json:"category_name"`
	Date         *core.Date            `json:"date"`
	Tags         *[]string             `json:"tags"`
	Type         *core.TransactionType `json:"type"`
}

// parseMonth reads an optional ?month=YYYY-MM query parameter.
func parseMonth(r *http.Request) (*time.Time, bool) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return nil, true
	}
	month, err := time.Parse("2006-01", raw)
	if err != nil {
		return nil, false
	}
	return &month, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, ok := parseMonth(r)
	if !ok {
		respondBadRequest(w, "invalid month: expected YYYY-MM")
		return
	}
	if month == nil {
		respondJSON(w, http.StatusOK, s.container.Transactions())
		return
	}

	transactions, err := s.container.TransactionsForMonth(r.Context(), *month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.container.CreateTransaction(r.Context(), core.Transaction{
		Amount:       req.Amount,
		Description:  req.Description,
		CategoryName: req.CategoryName,
		Date:         req.Date,
		Tags:         req.Tags,
		Type:         req.Type,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.container.UpdateTransaction(r.Context(), r.PathValue("id"), store.TransactionUpdate{
		Amount:       req.Amount,
		Description:  req.Description,
		CategoryName: req.CategoryName,
		Date:         req.Date,
		Tags:         req.Tags,
		Type:         req.Type,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.container.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
