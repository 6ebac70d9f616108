// Package render превращает текст ответа модели в безопасный HTML для транскрипта.
package render

import (
	"html/template"
	"regexp"
	"strings"
)

var (
	fencePattern   = regexp.MustCompile("```(\\w*)\\s*([\\s\\S]*?)```")
	edgeBlankLines = regexp.MustCompile(`^\s*\n|\n\s*$`)
	lineStart      = regexp.MustCompile(`(?m)^`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
	)
)

const codeIndent = "    "

// EscapeHTML экранирует пять метасимволов HTML.
func EscapeHTML(value string) string {
	return htmlEscaper.Replace(value)
}

// FormatMessage экранирует текст, оформляет блоки кода и только после этого
// помечает результат как доверенный HTML.
func FormatMessage(message string) template.HTML {
	var builder strings.Builder

	last := 0
	for _, match := range fencePattern.FindAllStringSubmatchIndex(message, -1) {
		builder.WriteString(formatText(message[last:match[0]]))

		language := message[match[2]:match[3]]
		code := message[match[4]:match[5]]
		builder.WriteString(formatCode(language, code))

		last = match[1]
	}
	builder.WriteString(formatText(message[last:]))

	return template.HTML(builder.String())
}

func formatText(text string) string {
	return strings.ReplaceAll(EscapeHTML(text), "\n", "<br>")
}

func formatCode(language, code string) string {
	cleaned := strings.TrimSpace(code)
	cleaned = edgeBlankLines.ReplaceAllString(cleaned, "")
	cleaned = lineStart.ReplaceAllString(cleaned, codeIndent)

	escaped := strings.ReplaceAll(EscapeHTML(cleaned), "\n", "<br>")
	return `<pre><code class="` + EscapeHTML(language) + `">` + escaped + `</code></pre>`
}
