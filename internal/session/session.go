// Package session persists the authenticated credential between runs.
// The sync engine only ever reads it through Source.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdsantisteban/todo-frontend/internal/config"
	"github.com/jdsantisteban/todo-frontend/internal/model"
)

const credFileName = "credentials.json"

// ErrEmptyToken is returned by Save for a blank token.
var ErrEmptyToken = errors.New("empty token")

// Source hands out the credential for the current operation.
type Source interface {
	Credential() model.Credential
}

// Static is a fixed credential, used by one-shot commands and tests.
type Static model.Credential

func (s Static) Credential() model.Credential { return model.Credential(s) }

// File is the on-disk credential store. The zero value uses config.Dir().
type File struct {
	// Dir overrides the state directory.
	Dir string
}

func (f File) path() (string, error) {
	dir := f.Dir
	if dir == "" {
		d, err := config.Dir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, credFileName), nil
}

// Load returns the current credential. A missing file yields the zero
// credential and no error. TADA_TOKEN (and TADA_USERNAME) override the file.
func (f File) Load() (model.Credential, error) {
	if env := strings.TrimSpace(os.Getenv("TADA_TOKEN")); env != "" {
		return model.Credential{
			Token:    stripBearer(env),
			Username: strings.TrimSpace(os.Getenv("TADA_USERNAME")),
			Source:   "env",
		}, nil
	}

	p, err := f.path()
	if err != nil {
		return model.Credential{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Credential{}, nil // not logged in
		}
		return model.Credential{}, fmt.Errorf("read credentials: %w", err)
	}
	var c model.Credential
	if err := json.Unmarshal(b, &c); err != nil {
		return model.Credential{}, fmt.Errorf("parse credentials: %w", err)
	}
	c.Token = stripBearer(strings.TrimSpace(c.Token))
	return c, nil
}

// Credential implements Source; a read error reads as logged out.
func (f File) Credential() model.Credential {
	c, _ := f.Load()
	return c
}

// Save persists the credential with owner-only permissions.
func (f File) Save(c model.Credential) error {
	c.Token = stripBearer(strings.TrimSpace(c.Token))
	if c.Token == "" {
		return ErrEmptyToken
	}
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	c.Source = "file"
	c.CreatedAt = time.Now().UTC()
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Logging out twice is not an error.
func (f File) Clear() error {
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
