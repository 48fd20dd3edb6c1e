package main

import (
	"os"

	"card-codec/internal/cli"
	"card-codec/internal/common/logging"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is not an error; the environment and defaults apply.
	_ = godotenv.Load()

	err := cli.Execute()
	logging.MustSync()
	if err != nil {
		os.Exit(1)
	}
}
