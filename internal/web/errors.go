package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/JoshBaneyCS/casino-wagers/internal/apperr"
)

const internalMessage = "Internal server error"

var (
	ErrAuthRequired = apperr.New(apperr.KindAuthorization, "AUTH_REQUIRED", "Authentication required")
	ErrInvalidJSON  = apperr.Validation("INVALID_JSON", "Invalid request body")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "NOT_FOUND", "Not found")
	ErrRateLimited  = apperr.New(apperr.KindRateLimited, "RATE_LIMITED", "Too many bets, slow down")
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindDuplicate, apperr.KindInsufficientFunds:
		return http.StatusBadRequest
	case apperr.KindAuthentication, apperr.KindAuthorization:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail answers with the status for err's kind and its message.
func (r *Response) Fail(err error) {
	r.FailWith(err, nil)
}

// FailWith is Fail with a payload, e.g. the round a failed action left
// behind. Unclassified errors are logged and answered with a generic 500;
// their text never reaches the client.
func (r *Response) FailWith(err error, payload any) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		r.Send(StatusFor(ae.Kind), ae.Message, payload)
		return
	}
	log.Error().Err(err).Msg("internal_error")
	r.Send(http.StatusInternalServerError, internalMessage, nil)
}
