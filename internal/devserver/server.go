// Package devserver is a local implementation of the todo API the client
// talks to. It exists so the client can be exercised end to end.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

type ctxKey struct{}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store  *Store
	logger *slog.Logger
}

// New creates a new Handlers instance.
func New(s *Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{store: s, logger: logger}
}

// Routes mounts everything under /api.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireToken)
			r.Get("/todos", h.ListTodos)
			r.Post("/todos", h.CreateTodo)
			r.Put("/todos/{id}", h.UpdateTodo)
			r.Delete("/todos/{id}", h.DeleteTodo)
		})
	})
	return r
}

func (h *Handlers) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		u, err := h.store.UserForToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			h.serverError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func userFrom(r *http.Request) User {
	u, _ := r.Context().Value(ctxKey{}).(User)
	return u
}

// Register creates an account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.store.CreateUser(r.Context(), in.Username, in.Email, in.Password)
	switch {
	case errors.Is(err, ErrMissingFields):
		respondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	case errors.Is(err, ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.serverError(w, err)
		return
	}
	h.logger.Info("user registered", "user", u.ID)
	respondJSON(w, http.StatusCreated, map[string]string{"message": "registered", "username": u.Username})
}

// Login returns {token, username}.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	token, u, err := h.store.Login(r.Context(), in.Email, in.Password)
	if errors.Is(err, ErrBadLogin) {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token, "username": u.Username})
}

// ListTodos returns the caller's todos.
func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListTodos(r.Context(), userFrom(r).ID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// CreateTodo accepts {text}.
func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	it, err := h.store.CreateTodo(r.Context(), userFrom(r).ID, in.Text)
	if errors.Is(err, ErrMissingFields) {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// UpdateTodo accepts a partial {text?, completed?}.
func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}
	it, err := h.store.UpdateTodo(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"), p)
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "todo not found")
		return
	case errors.Is(err, ErrMissingFields):
		respondError(w, http.StatusBadRequest, "text cannot be empty")
		return
	case err != nil:
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// DeleteTodo removes a todo.
func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteTodo(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "todo not found")
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError sends {"message": ...}, the shape the client reads.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]string{"message": message})
}

func (h *Handlers) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("internal server error", "err", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}
