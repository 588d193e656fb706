package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/lead-pipeline/internal/entity"
	"github.com/xavierca1/lead-pipeline/internal/infra/http/middleware"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the lead error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		vErr *entity.ValidationError
		tErr *entity.IncompleteTransitionError
		aErr *entity.AccessDeniedError
		sErr *entity.StoreError
	)

	switch {
	case errors.As(err, &vErr):
		middleware.RecordRejection("validation")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation_error", Message: vErr.Message, Field: vErr.Field})
	case errors.As(err, &tErr):
		middleware.RecordRejection("incomplete_transition")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "incomplete_transition", Message: tErr.Message})
	case errors.As(err, &aErr):
		middleware.RecordRejection("access_denied")
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access_denied", Message: aErr.Error()})
	case errors.Is(err, entity.ErrLeadNotFound), errors.Is(err, entity.ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &sErr):
		logger.Error("store failure", zap.String("op", sErr.Op), zap.Error(sErr.Err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "store_unavailable", Message: "The lead store could not complete the request"})
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Internal server error"})
	}
}

// actingProfile reads the profile the session middleware resolved.
func actingProfile(w http.ResponseWriter, r *http.Request) (entity.Profile, bool) {
	p, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "no session"})
	}
	return p, ok
}
