package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"example.com/chat-relay/internal/chatclient"
	"example.com/chat-relay/internal/models"
)

type chatOptions struct {
	url         string
	model       string
	temperature float64
	maxTokens   int
	token       string
	timeout     time.Duration
}

// NewChatCommand собирает корневую команду терминального клиента.
func NewChatCommand() *cobra.Command {
	opts := chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat through the relay",
		Long: `Start an interactive chat session through the chat relay.

The conversation is kept locally and sent with every message.
Switching the model starts a new conversation.`,
		Example: `  # Chat with Claude on a local relay
  $ chat --url http://localhost:8080

  # Use GPT-4 with a bearer token
  $ chat --model gpt-4-0125-preview --token $CHAT_TOKEN`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientOpts := chatclient.Options{
				BaseURL:   opts.url,
				Model:     opts.model,
				Token:     opts.token,
				MaxTokens: opts.maxTokens,
				Timeout:   opts.timeout,
			}
			if cmd.Flags().Changed("temperature") {
				clientOpts.Temperature = &opts.temperature
			}

			session := NewSession(chatclient.New(clientOpts), cmd.InOrStdin(), cmd.OutOrStdout())
			return session.Run(cmd.Context(), opts.url)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVar(&opts.url, "url", envOr("CHAT_RELAY_URL", "http://localhost:8080"), "relay base URL")
	flags.StringVarP(&opts.model, "model", "m", models.ModelClaudeSonnet, "model identifier")
	flags.Float64VarP(&opts.temperature, "temperature", "t", 0.1, "sampling temperature")
	flags.IntVar(&opts.maxTokens, "max-tokens", 0, "max tokens per reply (0 uses the model default)")
	flags.StringVar(&opts.token, "token", os.Getenv("CHAT_RELAY_TOKEN"), "bearer token for a protected relay")
	flags.DurationVar(&opts.timeout, "timeout", 90*time.Second, "request timeout")

	return cmd
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
