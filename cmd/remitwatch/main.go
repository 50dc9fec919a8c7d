package main

import (
	"github.com/joho/godotenv"

	"remitwatch/internal/cli"
)

func main() {
	// Optional; environment variables win over .env values.
	_ = godotenv.Load()

	cli.Execute()
}
