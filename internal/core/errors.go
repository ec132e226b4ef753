package core

// Error codes for domain errors.
const (
	ErrCodeNameEmpty       = "name_empty"
	ErrCodeNameTaken       = "name_taken"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUserNotFound    = "user_not_found"
	ErrCodeNotFound        = "not_found"
	ErrCodeForbidden       = "forbidden"
	ErrCodeStorageFailure  = "storage_failure"
	ErrCodeUnauthenticated = "unauthenticated"
	ErrCodeInternal        = "internal_error"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
