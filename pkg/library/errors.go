package library

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the lending core.
var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrNullMember           = errors.New("member is not associated with a library")
	ErrOutOfStock           = errors.New("out of stock")
	ErrTooManyBorrowed      = errors.New("too many borrowed books")
	ErrLowBalance           = errors.New("low balance")
	ErrOutstandingLoans     = errors.New("outstanding loans")
	ErrSystemNotInitialized = errors.New("library system not initialized")
	ErrInvalidTitle         = errors.New("invalid title")
	ErrInvalidAuthors       = errors.New("invalid authors")
	ErrInvalidPublishedYear = errors.New("invalid published year")
	ErrInvalidEditionID     = errors.New("invalid edition id")
	ErrInvalidStock         = errors.New("invalid stock count")
	ErrInvalidMemberName    = errors.New("invalid member name")
	ErrInvalidLibraryID     = errors.New("invalid library id")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDiscountRate  = errors.New("invalid discount rate")
	ErrInvalidLateFee       = errors.New("invalid late fee percentage")
	ErrInvalidFeePolicy     = errors.New("invalid fee policy")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
