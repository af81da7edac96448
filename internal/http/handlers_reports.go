package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"deltafin/internal/core"
	"deltafin/internal/report"
	"deltafin/internal/store"
)

func writeCached(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// reportMonth defaults to the current month when ?month is absent.
func (s *Server) reportMonth(r *http.Request) (time.Time, bool) {
	month, ok := parseMonth(r)
	if !ok {
		return time.Time{}, false
	}
	if month == nil {
		now := s.now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	}
	return *month, true
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, ok := s.reportMonth(r)
	if !ok {
		respondBadRequest(w, "invalid month: expected YYYY-MM")
		return
	}

	key := r.URL.Path + "?month=" + month.Format("2006-01")
	data, err := s.cachedReport(key, func() ([]byte, error) {
		stats := report.Monthly(s.container.Transactions(), month, s.now())
		return json.Marshal(stats)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeCached(w, data)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	month, ok := s.reportMonth(r)
	if !ok {
		respondBadRequest(w, "invalid month: expected YYYY-MM")
		return
	}

	key := r.URL.Path + "?month=" + month.Format("2006-01")
	data, err := s.cachedReport(key, func() ([]byte, error) {
		breakdown := report.CategoryExpenses(s.container.Transactions(), month, s.now())
		if breakdown == nil {
			breakdown = []report.CategoryExpense{}
		}
		return json.Marshal(breakdown)
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeCached(w, data)
}

func (s *Server) handleBalanceReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.cachedReport(r.URL.Path, func() ([]byte, error) {
		balance := report.TotalBalance(s.container.Transactions())
		return json.Marshal(map[string]core.Money{"total_balance": balance})
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeCached(w, data)
}

type goalReportResponse struct {
	Goal        core.SavingsGoal    `json:"goal"`
	Progress    report.GoalProgress `json:"progress"`
	Recommended *core.Money         `json:"recommended_contribution,omitempty"`
	Estimated   *goalEstimate       `json:"estimated_completion,omitempty"`
}

type goalEstimate struct {
	Months int       `json:"months"`
	Date   core.Date `json:"date"`
}

// handleGoalReport renders progress for one goal. Optional query parameters:
// months=N asks for a recommended monthly contribution, monthly=AMOUNT asks
// for an estimated completion at that contribution level.
func (s *Server) handleGoalReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var goal *core.SavingsGoal
	for _, g := range s.container.Goals() {
		if g.ID == id {
			goal = &g
			break
		}
	}
	if goal == nil {
		respondError(w, r, store.NewError(store.KindNotFound, "http.handleGoalReport", nil))
		return
	}

	resp := goalReportResponse{
		Goal:     *goal,
		Progress: report.Progress(*goal),
	}

	if raw := r.URL.Query().Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil || months <= 0 {
			respondBadRequest(w, "invalid months: expected a positive integer")
			return
		}
		rec := report.RecommendedContribution(*goal, months)
		resp.Recommended = &rec
	}

	if raw := r.URL.Query().Get("monthly"); raw != "" {
		monthly, err := core.ParseMoney(raw)
		if err != nil {
			respondBadRequest(w, "invalid monthly: expected a positive amount")
			return
		}
		if months, date, ok := report.EstimatedCompletion(*goal, monthly, s.now()); ok {
			resp.Estimated = &goalEstimate{Months: months, Date: core.DateOf(date)}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
