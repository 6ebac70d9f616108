package ai

import "example.com/chat-relay/internal/models"

// BuildOutbound собирает список для отправки: преамбула, прошлая история, новое сообщение.
func BuildOutbound(preamble string, prior []Message, message string) []Message {
	cleaned := withoutPreamble(preamble, prior)

	out := make([]Message, 0, len(cleaned)+2)
	if preamble != "" {
		out = append(out, Message{Role: models.RoleSystem, Content: preamble})
	}
	out = append(out, cleaned...)
	out = append(out, Message{Role: models.RoleUser, Content: message})
	return out
}

// BuildReturned собирает историю для клиента; преамбула в нее никогда не попадает.
func BuildReturned(preamble string, prior []Message, message, reply string) []Message {
	cleaned := withoutPreamble(preamble, prior)

	out := make([]Message, 0, len(cleaned)+2)
	out = append(out, cleaned...)
	out = append(out,
		Message{Role: models.RoleUser, Content: message},
		Message{Role: models.RoleAssistant, Content: reply},
	)
	return out
}

func withoutPreamble(preamble string, prior []Message) []Message {
	out := make([]Message, 0, len(prior))
	for _, message := range prior {
		if message.Role == models.RoleSystem && message.Content == preamble {
			continue
		}
		out = append(out, message)
	}
	return out
}
