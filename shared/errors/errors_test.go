package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Message: "bad board"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", &ValidationError{Message: "x"}), http.StatusBadRequest},
		{"with status", &ErrorWithStatusCode{Message: "gone", StatusCode: http.StatusNotFound}, http.StatusNotFound},
		{"not found", NotFound, http.StatusNotFound},
		{"storage", &StorageError{Op: "getThread", Target: "id", Err: cause}, http.StatusInternalServerError},
		{"hashing", &HashingError{Op: "hash", Err: cause}, http.StatusInternalServerError},
		{"plain", cause, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestWrappedCausesAreKept(t *testing.T) {
	cause := errors.New("disk full")

	storageErr := &StorageError{Op: "addReply", Target: "42", Err: cause}
	assert.ErrorIs(t, storageErr, cause)
	assert.Equal(t, "storage: addReply 42: disk full", storageErr.Error())
	assert.Equal(t, "storage: deleteAll: disk full", (&StorageError{Op: "deleteAll", Err: cause}).Error())

	hashErr := &HashingError{Op: "verify", Err: cause}
	assert.ErrorIs(t, hashErr, cause)
	assert.True(t, Is[*HashingError](fmt.Errorf("outer: %w", hashErr)))
	assert.False(t, Is[*StorageError](hashErr))
}
