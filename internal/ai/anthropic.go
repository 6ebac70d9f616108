package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"example.com/chat-relay/internal/models"
)

const DefaultAnthropicVersion = "2023-06-01"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	version    string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicClient создает клиент Anthropic с заданными параметрами.
func NewAnthropicClient(apiKey, baseURL, version string, timeout time.Duration) *AnthropicClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	if strings.TrimSpace(version) == "" {
		version = DefaultAnthropicVersion
	}
	return &AnthropicClient{
		apiKey:  apiKey,
		baseURL: trimmedURL,
		version: version,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *AnthropicClient) Name() string {
	return VendorAnthropic.String()
}

func (c *AnthropicClient) Vendor() Vendor {
	return VendorAnthropic
}

// Chat отправляет сообщения в Anthropic. Ведущее system-сообщение уходит в поле system,
// остальные сообщения с ролью system из списка выбрасываются: API их не принимает.
func (c *AnthropicClient) Chat(ctx context.Context, params ChatParams) (Completion, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Completion{}, errors.New("anthropic api key is missing")
	}

	system, rest := splitSystem(params.Messages)

	messages := make([]anthropicMessage, 0, len(rest))
	for _, message := range rest {
		if message.Role == models.RoleSystem {
			continue
		}
		messages = append(messages, anthropicMessage{Role: string(message.Role), Content: message.Content})
	}

	if len(messages) == 0 {
		return Completion{}, errors.New("anthropic request has no messages")
	}

	temperature := params.Temperature
	request := anthropicRequest{
		Model:       params.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: &temperature,
	}

	headers := http.Header{}
	headers.Set("x-api-key", c.apiKey)
	headers.Set("anthropic-version", c.version)

	endpoint := fmt.Sprintf("%s/messages", c.baseURL)
	status, body, err := postJSON(ctx, c.httpClient, VendorAnthropic, endpoint, headers, request)
	if err != nil {
		return Completion{}, err
	}

	if status < 200 || status >= 300 {
		var apiErr anthropicResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return Completion{Raw: body}, &VendorAPIError{Vendor: VendorAnthropic, StatusCode: status, Message: apiErr.Error.Message}
		}
		return Completion{Raw: body}, &VendorAPIError{Vendor: VendorAnthropic, StatusCode: status, Message: truncateBody(body)}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{Raw: body}, &MalformedResponseError{Vendor: VendorAnthropic, Reason: err.Error()}
	}

	for _, block := range parsed.Content {
		if block.Type != "text" {
			continue
		}
		return Completion{
			Text:         block.Text,
			Raw:          body,
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		}, nil
	}

	return Completion{Raw: body}, &MalformedResponseError{Vendor: VendorAnthropic, Reason: "response missing text content"}
}

func splitSystem(messages []Message) (string, []Message) {
	if len(messages) > 0 && messages[0].Role == models.RoleSystem {
		return messages[0].Content, messages[1:]
	}
	return "", messages
}
