package main

import (
	"os"

	"example.com/chat-relay/internal/cli"
)

func main() {
	if err := cli.NewTokenCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
