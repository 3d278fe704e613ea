package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jdsantisteban/todo-frontend/internal/devserver"
)

func main() {
	port := getEnv("PORT", "5000")
	dbPath := getEnv("DB_PATH", "./data/todos.db")

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create data directory", "err", err)
		os.Exit(1)
	}

	s, err := devserver.NewStore(dbPath)
	if err != nil {
		logger.Error("failed to initialize store", "err", err)
		os.Exit(1)
	}
	defer s.Close()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Mount("/", devserver.New(s, logger).Routes())

	addr := fmt.Sprintf(":%s", port)
	logger.Info("starting server", "url", "http://localhost"+addr+"/api")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
