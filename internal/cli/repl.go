// Package cli реализует терминальный клиент relay.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"example.com/chat-relay/internal/chatclient"
	"example.com/chat-relay/internal/models"
)

const helpText = `/model <id>      switch model (clears the conversation)
/models          list models known to the relay
/export <file>   save the transcript as HTML
/clear           start a new conversation
/quit            exit`

type Session struct {
	client *chatclient.Client
	in     io.Reader
	out    io.Writer
}

// NewSession создает интерактивную сессию поверх клиента чата.
func NewSession(client *chatclient.Client, in io.Reader, out io.Writer) *Session {
	return &Session{client: client, in: in, out: out}
}

// Run читает строки до /quit или конца ввода. Enter отправляет строку.
func (s *Session) Run(ctx context.Context, baseURL string) error {
	printBanner(s.out, baseURL, s.client.Model())

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		userColor.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := s.command(ctx, line)
			if err != nil {
				printError(s.out, "%v", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		reply, err := s.client.Send(ctx, line)
		if err != nil {
			printMessage(s.out, models.RoleAssistant, chatclient.Apology)
			printError(s.out, "%v", err)
			continue
		}
		printMessage(s.out, models.RoleAssistant, reply)
	}
}

func (s *Session) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		printInfo(s.out, "%s", helpText)
	case "/clear":
		s.client.Clear()
		printInfo(s.out, "conversation cleared")
	case "/model":
		if len(args) != 1 {
			return false, errors.New("usage: /model <id>")
		}
		s.client.SetModel(args[0])
		printInfo(s.out, "model set to %s, conversation cleared", args[0])
	case "/models":
		list, err := s.client.Models(ctx)
		if err != nil {
			return false, err
		}
		current := s.client.Model()
		for _, info := range list {
			marker := " "
			if info.ID == current {
				marker = "*"
			}
			status := "configured"
			if !info.Configured {
				status = "not configured"
			}
			printInfo(s.out, "%s %-28s %-14s %s", marker, info.ID, info.Label, status)
		}
	case "/export":
		if len(args) != 1 {
			return false, errors.New("usage: /export <file>")
		}
		if err := s.export(args[0]); err != nil {
			return false, err
		}
		printInfo(s.out, "transcript saved to %s", args[0])
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}

	return false, nil
}

func (s *Session) export(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	return s.client.ExportHTML(file)
}
