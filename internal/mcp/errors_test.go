package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", rxerrors.NotFound("page", "missing"), ErrCodeNotFound},
		{"empty corpus", rxerrors.EmptyCorpus("/docs"), ErrCodeEmptyIndex},
		{"validation", rxerrors.ValidationError("bad input", nil), ErrCodeInvalidParams},
		{"internal", rxerrors.InternalError("boom", nil), ErrCodeInternalError},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeTimeout},
		{"plain error", errors.New("anything"), ErrCodeInternalError},
		{"wrapped coded error", fmt.Errorf("outer: %w", rxerrors.NotFound("component", "x")), ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			assert.Equal(t, tt.code, mapped.Code)
			assert.NotEmpty(t, mapped.Message)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMCPError_Error(t *testing.T) {
	err := NewInvalidParamsError("query parameter is required")
	assert.Contains(t, err.Error(), "-32602")
	assert.Contains(t, err.Error(), "query parameter is required")
}
