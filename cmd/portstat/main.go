package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alexander-50/Port-Stat/internal/cli"
)

func main() {
	// Interrupt and SIGTERM stop the monitor cleanly with exit code 0
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx)
	cancel()
	if err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
