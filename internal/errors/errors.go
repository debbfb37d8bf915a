package errors

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidCart    = "INVALID_CART"
	CodeInvalidStatus  = "INVALID_STATUS"
	CodeInvalidRequest = "INVALID_REQUEST"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Code    string
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidRequest,
		Message: message,
		Details: details,
	}
}

// NewInvalidCartError reports a cart that must not be persisted.
func NewInvalidCartError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidCart,
		Message: message,
		Details: details,
	}
}

func NewInvalidStatusError(status string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("invalid status %q", status),
		Details: []ValidationDetail{{Field: "status", Message: "status is not one of the allowed values"}},
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func IsInvalidCart(err error) bool {
	ve, ok := IsValidationError(err)
	return ok && ve.Code == CodeInvalidCart
}

func IsInvalidStatus(err error) bool {
	ve, ok := IsValidationError(err)
	return ok && ve.Code == CodeInvalidStatus
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// DeadlockError is returned once lock-related retries are exhausted.
type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

func IsInternalError(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
