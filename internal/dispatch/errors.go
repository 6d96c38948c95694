package dispatch

import "github.com/hallowell/workitem/internal/apperr"

// ErrorCode classifies a dispatch error for the external shell, per §7:
// Validation/NotFound/Conflict surface verbatim as invalid params;
// OrderKeyExhausted and Storage surface as internal errors that still carry
// the underlying error's message.
type ErrorCode string

const (
	ErrInvalidParams ErrorCode = "invalid_params"
	ErrInternal      ErrorCode = "internal"
)

// Error is the typed error every verb returns instead of a raw error.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// wrap classifies err per the apperr taxonomy, or returns nil for nil.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if apperr.IsUserVisible(err) {
		return &Error{Code: ErrInvalidParams, Message: err.Error()}
	}
	return &Error{Code: ErrInternal, Message: err.Error()}
}
