package main

import (
	"os"

	"github.com/joho/godotenv"

	"verifbench/internal/cli"
)

func main() {
	// Missing .env is fine; credentials may come from the environment.
	_ = godotenv.Load()
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
