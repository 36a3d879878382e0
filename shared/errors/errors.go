package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

var NotFound = &ErrorWithStatusCode{Message: "Not found", StatusCode: http.StatusNotFound}

// ValidationError is returned for malformed input before any side effect happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// HashingError is a credential subsystem failure. A password mismatch is never a HashingError.
type HashingError struct {
	Op  string
	Err error
}

func (e *HashingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("hashing: %s failed", e.Op)
	}
	return fmt.Sprintf("hashing: %s: %v", e.Op, e.Err)
}

func (e *HashingError) Unwrap() error {
	return e.Err
}

// StorageError wraps a backend read/write failure with the operation and the target id.
type StorageError struct {
	Op     string
	Target string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether any error in err's chain is of type T.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// StatusCode maps an error to the http status the boundary should answer with.
func StatusCode(err error) int {
	var withStatus *ErrorWithStatusCode
	if errors.As(err, &withStatus) {
		return withStatus.StatusCode
	}
	if Is[*ValidationError](err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
