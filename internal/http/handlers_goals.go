package http

import (
	"net/http"

	"deltafin/internal/core"
	"deltafin/internal/store"
)

type goalRequest struct {
	Name         string     `json:"name"`
	TargetAmount core.Money `json:"target_amount"`
	TargetDate   core.Date  `json:"target_date"`
	Description  string     `json:"description"`
}

type goalUpdateRequest struct {
	Name         *string     `json:"name"`
	TargetAmount *core.Money `json:"target_amount"`
	TargetDate   *core.Date  `json:"target_date"`
	Description  *string     `json:"description"`
}

type contributionRequest struct {
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.container.Goals())
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.container.CreateGoal(r.Context(), core.SavingsGoal{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Description:  req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.container.UpdateGoal(r.Context(), r.PathValue("id"), store.GoalUpdate{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Description:  req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.container.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	goal, err := s.container.AddContribution(r.Context(), r.PathValue("id"), core.GoalContribution{
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := s.container.ListContributions(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if contributions == nil {
		contributions = []core.GoalContribution{}
	}
	respondJSON(w, http.StatusOK, contributions)
}
