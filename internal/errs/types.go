package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// UnauthorizedError means the caller presented no credential or an invalid one.
type UnauthorizedError struct {
	ErrorMessage
}

// AccessDeniedError means the credential is valid but the caller does not own
// the referenced workspace or connection.
type AccessDeniedError struct {
	ErrorMessage
}

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// UpstreamError wraps a failure from the banking provider or another external
// collaborator.
type UpstreamError struct {
	ErrorMessage
	Service string
}

// DatabaseError wraps a persistence failure along with the operation that hit it.
type DatabaseError struct {
	ErrorMessage
	Operation string
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAccessDeniedError(message string) *AccessDeniedError {
	return &AccessDeniedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUpstreamError(service, message string) *UpstreamError {
	return &UpstreamError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
	}
}

func NewDatabaseError(operation, message string) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
	}
}
