package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"graphcache/cmd/graphcache/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := commands.New()
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
