package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"clinic/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request from error", err: failure.BadRequest(errors.New("date is required")), code: http.StatusBadRequest, message: "date is required"},
		{name: "bad request from string", err: failure.BadRequestFromString("invalid time"), code: http.StatusBadRequest, message: "invalid time"},
		{name: "unauthorized", err: failure.Unauthorized("token expired"), code: http.StatusUnauthorized, message: "token expired"},
		{name: "not found", err: failure.NotFound("doctor not found"), code: http.StatusNotFound, message: "doctor not found"},
		{name: "forbidden", err: failure.Forbidden("not authorized"), code: http.StatusForbidden, message: "not authorized"},
		{name: "slot unavailable", err: failure.SlotUnavailableError, code: http.StatusBadRequest, message: "Doctor is not available at this time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestBadRequest_NilError(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("admit booking: %w", failure.NotFound("patient profile not found"))

	assert.Equal(t, http.StatusNotFound, failure.GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("connection reset")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}

func TestIsSlotUnavailable(t *testing.T) {
	assert.True(t, failure.IsSlotUnavailable(failure.SlotUnavailableError))
	assert.True(t, failure.IsSlotUnavailable(fmt.Errorf("insert: %w", failure.SlotUnavailableError)))
	assert.False(t, failure.IsSlotUnavailable(failure.BadRequestFromString("Doctor is not available at this time")))
}
