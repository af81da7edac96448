package http

import (
	"net/http"

	"deltafin/internal/core"
	"deltafin/internal/store"
)

type categoryRequest struct {
	Name        string               `json:"name"`
	Icon        string               `json:"icon"`
	Type        core.TransactionType `json:"type"`
	IsDefault   bool                 `json:"is_default"`
	Order       int                  `json:"order"`
	Description string               `json:"description"`
}

type categoryUpdateRequest struct {
	Name        *string               `json:"name"`
	Icon        *string               `json:"icon"`
	Type        *core.TransactionType `json:"type"`
	IsDefault   *bool                 `json:"is_default"`
	Order       *int                  `json:"order"`
	Description *string               `json:"description"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.container.Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.container.CreateCategory(r.Context(), core.Category{
		Name:        req.Name,
		Icon:        req.Icon,
		Type:        req.Type,
		IsDefault:   req.IsDefault,
		Order:       req.Order,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.container.UpdateCategory(r.Context(), r.PathValue("id"), store.CategoryUpdate{
		Name:        req.Name,
		Icon:        req.Icon,
		Type:        req.Type,
		IsDefault:   req.IsDefault,
		Order:       req.Order,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.container.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
