// Package mcp exposes the documentation index over the Model Context
// Protocol as a set of typed tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	rxerrors "github.com/rxdocs/rxmcp/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeNotFound indicates a page or component does not exist.
	ErrCodeNotFound = -32001

	// ErrCodeEmptyIndex indicates no index has been built yet.
	ErrCodeEmptyIndex = -32002

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var coded *rxerrors.Error
	if errors.As(err, &coded) {
		return mapCodedError(coded)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

func mapCodedError(e *rxerrors.Error) *MCPError {
	switch e.Code {
	case rxerrors.ErrCodeNotFound:
		return &MCPError{Code: ErrCodeNotFound, Message: e.Message}
	case rxerrors.ErrCodeEmptyCorpus:
		return &MCPError{
			Code:    ErrCodeEmptyIndex,
			Message: "No documentation indexed yet. Run 'rxmcp index' first.",
		}
	case rxerrors.ErrCodeInvalidInput, rxerrors.ErrCodeInvalidQuery:
		return &MCPError{Code: ErrCodeInvalidParams, Message: e.Message}
	default:
		switch e.Category {
		case rxerrors.CategoryValidation:
			return &MCPError{Code: ErrCodeInvalidParams, Message: e.Message}
		default:
			return &MCPError{Code: ErrCodeInternalError, Message: e.Message}
		}
	}
}
