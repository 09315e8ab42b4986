// main is the entry point for the watchlist CLI and server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/watchlist/cmd"
	"github.com/huangsam/watchlist/internal/contract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		cmd.Shutdown()
		contract.LogFatal("watchlist", err)
	}
}
