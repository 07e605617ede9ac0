// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNoRoleToRemove   = errors.New("no role to remove")
	ErrInvalidTime      = errors.New("invalid time")
	ErrAlreadyRead      = errors.New("notification already read")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Error kinds stay distinguishable all the way to the client; nothing is
// collapsed into a generic unauthorized response.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNoRoleToRemove):
		Problem(w, http.StatusBadRequest, "No Role To Remove", err.Error())
	case errors.Is(err, ErrInvalidTime):
		Problem(w, http.StatusBadRequest, "Invalid Time", err.Error())
	case errors.Is(err, ErrAlreadyRead):
		Problem(w, http.StatusBadRequest, "Already Read", err.Error())
	case errors.Is(err, ErrUnsupportedMedia):
		Problem(w, http.StatusUnsupportedMediaType, "Unsupported Media Type", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
