package chatclient

import (
	"fmt"
	"html/template"
	"io"
)

var exportTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chat with {{.Model}}</title>
</head>
<body>
<h1>{{.Model}}</h1>
{{range .Entries}}<div class="message {{.Role}}">{{.HTML}}</div>
{{end}}</body>
</html>
`))

// ExportHTML пишет транскрипт HTML-страницей.
// Текст сообщений уже экранирован при форматировании, модель экранирует шаблон.
func (c *Client) ExportHTML(w io.Writer) error {
	data := struct {
		Model   string
		Entries []Entry
	}{
		Model:   c.Model(),
		Entries: c.Transcript(),
	}

	if err := exportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}
