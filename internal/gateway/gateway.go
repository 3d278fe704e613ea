// Package gateway translates todo intents into authenticated HTTP calls
// against the remote API.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

// Gateway is the remote CRUD boundary. Every call carries the bearer token
// of the session it runs for and returns the server's canonical item.
type Gateway interface {
	List(ctx context.Context, token string) ([]model.Item, error)
	Create(ctx context.Context, token, text string) (model.Item, error)
	Update(ctx context.Context, token, id string, patch model.Patch) (model.Item, error)
	Delete(ctx context.Context, token, id string) error
}

// RemoteError is any failed call: transport error or non-2xx status.
// Status is 0 when the request never got a response.
type RemoteError struct {
	Op     string
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s %s %s: %d %s: %s", e.Op, e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Body)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Op, e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Unauthorized reports whether the server rejected the credential.
func (e *RemoteError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}
