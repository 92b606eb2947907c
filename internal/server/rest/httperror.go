package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
)

const msgInternalServer = "Internal Server Error"

// HTTPError is an error with a status code and a message safe to show to the
// caller.
type HTTPError struct {
	cause   error
	Code    int
	Message string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func newHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{cause: cause, Code: code, Message: message}
}

func errUnprocessable(message string, cause error) *HTTPError {
	return newHTTPError(http.StatusUnprocessableEntity, message, cause)
}

// statusByError maps domain sentinels to status codes. Order matters only for
// errors that wrap more than one sentinel.
var statusByError = []struct {
	err  error
	code int
}{
	{common.ErrDuplicateEmail, http.StatusConflict},
	{common.ErrDuplicateUsername, http.StatusConflict},
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrNotConfirmed, http.StatusUnauthorized},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrVerification, http.StatusBadRequest},
	{common.ErrEmailNotConfirmed, http.StatusBadRequest},
	{common.ErrInvalidOrExpiredToken, http.StatusBadRequest},
	{common.ErrDuplicateContact, http.StatusBadRequest},
	{common.ErrUserNotFound, http.StatusNotFound},
	{common.ErrContactNotFound, http.StatusNotFound},
	{common.ErrForbidden, http.StatusForbidden},
	{common.ErrValidation, http.StatusUnprocessableEntity},
}

// toHTTPError converts err into the response it should produce. Errors that
// match no sentinel become a 500 with a generic message.
func toHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			msg := err.Error()
			if m.code == http.StatusUnauthorized {
				msg = m.err.Error()
			}
			return newHTTPError(m.code, msg, err)
		}
	}

	return newHTTPError(http.StatusInternalServerError, msgInternalServer, err)
}
