// Package main provides the decors CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mesh-intelligence/decors/internal/cli"
)

func main() {
	// A missing .env is fine; DECORS_* variables may come from the shell.
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
