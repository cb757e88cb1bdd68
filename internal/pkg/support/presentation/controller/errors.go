package controller

import (
	"errors"
	"net/http"

	support "servihub/internal/pkg/support/application/domain"
	"servihub/internal/pkg/support/application/usecase"
)

// statusFor maps the support error taxonomy onto HTTP statuses: validation
// errors are 400, state conflicts 409, unknown tickets 404, access 403, and
// transient store failures 500 so clients retry.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, support.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, support.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, support.ErrAlreadyAssigned),
		errors.Is(err, support.ErrTicketClosed),
		errors.Is(err, support.ErrNotAssigned),
		errors.Is(err, support.ErrUnclaimedReply):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
