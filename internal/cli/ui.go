package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"example.com/chat-relay/internal/models"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	errorColor     = color.New(color.FgRed, color.Bold)
	infoColor      = color.New(color.FgYellow)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 2).
			Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

func printBanner(w io.Writer, baseURL, model string) {
	title := titleStyle.Render("Chat relay")
	body := fmt.Sprintf("%s\n%s · %s\n/help for commands", title, baseURL, model)
	fmt.Fprintln(w, bannerStyle.Render(body))
}

func printMessage(w io.Writer, role models.Role, text string) {
	switch role {
	case models.RoleUser:
		userColor.Fprint(w, "you> ")
		fmt.Fprintln(w, text)
	default:
		assistantColor.Fprint(w, "assistant> ")
		fmt.Fprintln(w, text)
	}
}

func printError(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	infoColor.Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}
