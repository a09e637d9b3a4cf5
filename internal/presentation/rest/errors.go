package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bibbank/decision-engine/internal/domain/model"
)

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

type errorMapping struct {
	kind   error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{model.ErrValidation, http.StatusBadRequest, "validation_error"},
	{model.ErrAccessDenied, http.StatusForbidden, "access_denied"},
	{model.ErrNotFound, http.StatusNotFound, "not_found"},
	{model.ErrAlreadyDecided, http.StatusConflict, "already_decided"},
	{model.ErrConflict, http.StatusConflict, "conflict"},
	{model.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
	{model.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{model.ErrPersistence, http.StatusInternalServerError, "persistence_error"},
	{model.ErrScoring, http.StatusInternalServerError, "scoring_error"},
}

// writeError maps err onto an HTTP status and JSON body. Internal failures
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, body := http.StatusInternalServerError, errorResponse{
		Error: "internal server error",
		Code:  "internal",
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			status, body.Code = m.status, m.code
			body.Error = m.kind.Error()
			break
		}
	}

	var de *model.DomainError
	if errors.As(err, &de) {
		body.Field = de.Field
		if status < http.StatusInternalServerError && de.Message != "" {
			body.Error = de.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
