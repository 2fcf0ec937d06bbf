// Package controllers holds the HTTP handlers. Each controller depends
// only on domain service interfaces and maps service errors onto the
// standardized response envelope.
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventinvitations/internal/delivery/http/helpers"
	"eventinvitations/internal/delivery/http/middleware"
	"eventinvitations/internal/domain"
)

// requireUserID pulls the authenticated user ID set by the auth middleware.
// Writes a 401 and returns false when the request is unauthenticated.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// writeServiceError maps a service error onto the API error taxonomy:
// validation → 400, not found → 404, forbidden → 403, transport → 502,
// anything else → 500 (logged).
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, ve.Msg)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrTransport):
		logger.ErrorContext(r.Context(), "transport failure", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeTransport, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
