package handler

import (
	"errors"
	"net/http"

	"github.com/go-otp-auth/internal/domain"
)

// httpError maps a service error to a status code and a coarse client message.
// Wrapped detail stays in the logs.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, domain.ErrInvalidInput.Error())
	case errors.Is(err, domain.ErrNoPendingOTP):
		writeError(w, http.StatusBadRequest, domain.ErrNoPendingOTP.Error())
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusBadRequest, domain.ErrExpired.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, domain.ErrInvalidCode.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error())
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, domain.ErrTooManyAttempts.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusBadGateway, domain.ErrDeliveryFailed.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
