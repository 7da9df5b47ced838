package staff

type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "validation_error"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	ErrCodeConflict     ErrorCode = "conflict"
	ErrCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
