package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

// Registration is the sign-up form.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register creates an account. It does not log in.
func (c *HTTPClient) Register(ctx context.Context, r Registration) error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("username, email and password are required")
	}
	return c.do(ctx, "register", http.MethodPost, "/auth/register", "", r, nil)
}

// Login exchanges email and password for a credential.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (model.Credential, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return model.Credential{}, errors.New("email and password are required")
	}
	var out loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "",
		loginRequest{Email: strings.TrimSpace(email), Password: password}, &out); err != nil {
		return model.Credential{}, err
	}
	if out.Token == "" {
		return model.Credential{}, errors.New("login: server returned no token")
	}
	return model.Credential{Token: out.Token, Username: out.Username}, nil
}
