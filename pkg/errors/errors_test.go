package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesType(t *testing.T) {
	err := New(ErrorTypeContainerNotFound, "no .c-scrollbar__hider on page")
	wrapped := fmt.Errorf("slack harvest: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrContainerNotFound))
	assert.False(t, stderrors.Is(wrapped, ErrExtractionUnavailable))
}

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("websocket closed")
	err := Wrap(ErrorTypeBrowser, "evaluate scrollTop", cause)

	assert.Equal(t, "browser error: evaluate scrollTop: websocket closed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "config error: bad value", New(ErrorTypeConfig, "bad value").Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  bool
	}{
		{ErrorTypeContainerNotFound, true},
		{ErrorTypeBrowser, true},
		{ErrorTypeConfig, false},
		{ErrorTypeExport, false},
		{ErrorTypeExtractionUnavailable, false},
		{ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.errorType))
		})
	}
}
