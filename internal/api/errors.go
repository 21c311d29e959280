package api

import (
	"errors"
	"net/http"

	"tablekeep/internal/domain"
	"tablekeep/internal/middleware"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code         int                       `json:"code"`
	Message      string                    `json:"message"`
	Field        string                    `json:"field,omitempty"`
	Alternatives []domain.TableAlternative `json:"alternatives,omitempty"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err. Anything outside the domain
// taxonomy is reported with a generic message.
func errorBody(err error) ErrorBody {
	status := httpStatusFromDomainError(err)
	body := ErrorBody{Code: status, Message: err.Error()}

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &notFound):
		body.Message, body.Field = notFound.Message, notFound.Field
	case errors.As(err, &validation):
		body.Message, body.Field = validation.Message, validation.Field
	case errors.As(err, &conflict):
		body.Message, body.Field = conflict.Message, conflict.Field
		body.Alternatives = conflict.Alternatives
	case status == http.StatusInternalServerError:
		body.Message = "internal error"
	}
	return body
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody(err)
	if body.Code == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
	} else {
		h.logger.DebugContext(r.Context(), "request rejected",
			"status", body.Code, "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
	}
	writeJSON(w, body.Code, body)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, field, msg string) {
	h.writeError(w, r, domain.ErrValidationField(field, "%s", msg))
}
