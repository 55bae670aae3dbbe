package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campus_delivery/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "campusctl:", err)
		stop()
		os.Exit(1)
	}
}
