package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"BlogScraper/internal/cli"
	"BlogScraper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		logging.New("error").Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
