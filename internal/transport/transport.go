// Package transport performs REST requests against the village backend and
// classifies their failures.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client performs a request and returns the decoded-later JSON payload or a
// classified error (*NetworkError or *ApplicationError).
type Client interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Send(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// NetworkError means the request never produced a server response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ApplicationError means the server answered with a failure status.
type ApplicationError struct {
	Status  int
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
}

// NotFound reports whether the server answered 404.
func (e *ApplicationError) NotFound() bool { return e.Status == http.StatusNotFound }

// Conflict reports whether the server answered 409.
func (e *ApplicationError) Conflict() bool { return e.Status == http.StatusConflict }
