package http

import (
	"encoding/json"
	"net/http"

	"deltafin/internal/log"
	"deltafin/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := store.KindOf(err)

	var status int
	switch kind {
	case store.KindValidation:
		status = http.StatusUnprocessableEntity
	case store.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusBadGateway
	}

	logger := log.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", log.FieldError, err)
	}

	respondJSON(w, status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
