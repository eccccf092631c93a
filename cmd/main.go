package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/cli"
)

func main() {
	// Optional; flags and real env vars win over .env entries.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
