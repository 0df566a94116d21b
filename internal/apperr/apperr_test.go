package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("tender", "t-1")))
	assert.Equal(t, CodeConflict, CodeOf(Conflict("already awarded")))
	assert.Equal(t, CodeInvalidInput, CodeOf(InvalidInput("amount", "must be positive")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")))
}

func TestCodeOfWrappedChain(t *testing.T) {
	inner := Conflict("bid already accepted")
	outer := fmt.Errorf("accept bid: %w", inner)
	assert.Equal(t, CodeConflict, CodeOf(outer))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to get tender")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to get tender")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("title", "required"), http.StatusBadRequest},
		{NotFound("issue", "i-1"), http.StatusNotFound},
		{Conflict("stage moved"), http.StatusConflict},
		{New(CodeUnauthorized, "role denied"), http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err))
	}
}
