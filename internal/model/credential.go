package model

import "time"

// Credential is the authenticated session the client acts on behalf of.
type Credential struct {
	Token     string    `json:"token"`
	Username  string    `json:"username,omitempty"`
	Source    string    `json:"source,omitempty"` // "env" | "file"
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the credential carries a token.
func (c Credential) Valid() bool { return c.Token != "" }
