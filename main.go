package main

import (
	"github.com/dheniges/pnp-client/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file in the working directory may carry PNP_* settings.
	_ = godotenv.Load()
	cmd.Execute()
}
