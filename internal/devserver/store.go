package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrBadLogin      = errors.New("invalid email or password")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingFields = errors.New("missing fields")
)

// User is an account as seen by the handlers.
type User struct {
	ID       string
	Username string
	Email    string
}

// Store keeps accounts, session tokens and todos in sqlite.
type Store struct {
	db   *sql.DB
	cost int
}

// NewStore opens (and migrates) the database at path. ":memory:" is fine for tests.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// each :memory: connection is its own database
	db.SetMaxOpenConns(1)

	s := &Store{db: db, cost: bcrypt.DefaultCost}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		"PRAGMA foreign_keys=ON;",
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS todos (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			text TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id, seq);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// CreateUser registers an account. Emails are compared case-insensitively.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (User, error) {
	username, email = strings.TrimSpace(username), normEmail(email)
	if username == "" || email == "" || password == "" {
		return User{}, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{ID: uuid.NewString(), Username: username, Email: email}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, hash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login checks the password and issues a new session token.
func (s *Store) Login(ctx context.Context, email, password string) (string, User, error) {
	var (
		u    User
		hash []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash FROM users WHERE email = ?`, normEmail(email),
	).Scan(&u.ID, &u.Username, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", User{}, ErrBadLogin
	}
	if err != nil {
		return "", User{}, fmt.Errorf("query user: %w", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", User{}, ErrBadLogin
	}

	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id) VALUES (?, ?)`, token, u.ID); err != nil {
		return "", User{}, fmt.Errorf("insert session: %w", err)
	}
	return token, u, nil
}

// UserForToken resolves a bearer token.
func (s *Store) UserForToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.email FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.token = ?`, token,
	).Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidToken
	}
	if err != nil {
		return User{}, fmt.Errorf("query session: %w", err)
	}
	return u, nil
}

// ListTodos returns the user's todos in creation order.
func (s *Store) ListTodos(ctx context.Context, userID string) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, completed FROM todos WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Text, &it.Completed); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateTodo stores a new, not completed todo.
func (s *Store) CreateTodo(ctx context.Context, userID, text string) (model.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Item{}, ErrMissingFields
	}
	it := model.Item{ID: uuid.NewString(), Text: text}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, text) VALUES (?, ?, ?)`, it.ID, userID, it.Text); err != nil {
		return model.Item{}, fmt.Errorf("insert todo: %w", err)
	}
	return it, nil
}

// UpdateTodo applies the fields present in p and returns the result.
func (s *Store) UpdateTodo(ctx context.Context, userID, id string, p model.Patch) (model.Item, error) {
	it, err := s.getTodo(ctx, userID, id)
	if err != nil {
		return model.Item{}, err
	}
	if p.Text != nil {
		t := strings.TrimSpace(*p.Text)
		if t == "" {
			return model.Item{}, ErrMissingFields
		}
		it.Text = t
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE todos SET text = ?, completed = ? WHERE id = ? AND user_id = ?`,
		it.Text, it.Completed, id, userID); err != nil {
		return model.Item{}, fmt.Errorf("update todo: %w", err)
	}
	return it, nil
}

// DeleteTodo removes a todo owned by the user.
func (s *Store) DeleteTodo(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) getTodo(ctx context.Context, userID, id string) (model.Item, error) {
	var it model.Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, completed FROM todos WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&it.ID, &it.Text, &it.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ErrNotFound
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("query todo: %w", err)
	}
	return it, nil
}

func normEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
