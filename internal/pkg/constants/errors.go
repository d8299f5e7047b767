package constants

import (
	"errors"
	"net/http"
)

// CodedError is an error that knows which HTTP status it maps to.
type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound           = NewCodedError("not found", http.StatusNotFound)
	ErrUnauthorized         = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrMissingAuthCookie    = NewCodedError("missing auth token", http.StatusUnauthorized)
	ErrForbidden            = NewCodedError("forbidden", http.StatusForbidden)
	ErrValidation           = NewCodedError("validation failed", http.StatusBadRequest)
	ErrBadRequest           = NewCodedError("bad request", http.StatusBadRequest)
	ErrConfirmationRequired = NewCodedError("delete requires confirmation", http.StatusPreconditionRequired)
	ErrRequestInFlight      = NewCodedError("request already in progress", http.StatusConflict)
	ErrFetchFailed          = NewCodedError("failed to fetch data", http.StatusServiceUnavailable)
	ErrMutationFailed       = NewCodedError("failed to save changes", http.StatusBadGateway)
	ErrPayloadTooLarge      = NewCodedError("file is too large", http.StatusRequestEntityTooLarge)
	ErrMaintenance          = NewCodedError("site is under maintenance", http.StatusServiceUnavailable)
	ErrUnknownDataset       = NewCodedError("unknown dataset", http.StatusNotFound)
	ErrUnsupportedFormat    = NewCodedError("unsupported export format", http.StatusBadRequest)
)

// HTTPCode returns the status of the first CodedError in err's chain.
func HTTPCode(err error) int {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return http.StatusInternalServerError
}
