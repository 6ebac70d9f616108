package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/chat-relay/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewChatCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
