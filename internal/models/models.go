package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message        string        `json:"message" validate:"required"`
	MessageHistory []ChatMessage `json:"messageHistory" validate:"omitempty,dive"`
	Temperature    *float64      `json:"temperature,omitempty"`
	MaxTokens      *int          `json:"maxTokens,omitempty"`
	Model          string        `json:"model" validate:"required"`
}

type ChatResponse struct {
	Response string        `json:"response"`
	History  []ChatMessage `json:"history"`
}

const ErrorItemType = "error"

type ErrorItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewErrorBody собирает тело ошибки из одного элемента.
func NewErrorBody(text string) []ErrorItem {
	return []ErrorItem{{Type: ErrorItemType, Text: text}}
}

type ModelInfo struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	MaxTokens int    `json:"max_tokens"`
}

const (
	ModelClaudeSonnet = "claude-3-5-sonnet-20241022"
	ModelGPT4         = "gpt-4-0125-preview"
	ModelGPTO1        = "o1-2024-12-17"
)

// Catalog возвращает список моделей, доступных в клиенте по умолчанию.
func Catalog() []ModelInfo {
	return []ModelInfo{
		{ID: ModelClaudeSonnet, Label: "Claude", MaxTokens: 8192},
		{ID: ModelGPT4, Label: "Chat GPT 4", MaxTokens: 4096},
		{ID: ModelGPTO1, Label: "Chat GPT O1", MaxTokens: 4096},
	}
}

// LookupModel ищет модель в каталоге без учета регистра.
func LookupModel(id string) (ModelInfo, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, info := range Catalog() {
		if info.ID == id {
			return info, true
		}
	}
	return ModelInfo{}, false
}

type RequestLog struct {
	ID            uuid.UUID `json:"id"`
	RequestID     string    `json:"request_id"`
	Subject       *string   `json:"subject,omitempty"`
	Vendor        string    `json:"vendor"`
	Model         string    `json:"model"`
	HistoryLength int       `json:"history_length"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	LatencyMS     int64     `json:"latency_ms"`
	Success       bool      `json:"success"`
	ErrorKind     *string   `json:"error_kind,omitempty"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
