// Command jse indexes JSE research documents and answers questions about
// them with cited sources.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Cyb-Leon/jse-decision-support/internal/adapters/driving/cli"
)

func main() {
	// A .env file is optional; values already in the environment win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
