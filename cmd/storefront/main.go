package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, newRootCmd(), os.Args[1:])
	cancel()
	os.Exit(code)
}
