package main

import (
	"os"

	"github.com/jdsantisteban/todo-frontend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
