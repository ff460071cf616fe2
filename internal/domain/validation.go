package domain

// ValidationError reports a missing or malformed request field. The message
// is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) ValidationError {
	return ValidationError{Message: message}
}
