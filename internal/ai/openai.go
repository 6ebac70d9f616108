package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type openAIChatRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	Temperature         *float64        `json:"temperature,omitempty"`
	MaxTokens           *int            `json:"max_tokens,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient создает клиент OpenAI с заданными параметрами.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: trimmedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenAIClient) Name() string {
	return VendorOpenAI.String()
}

func (c *OpenAIClient) Vendor() Vendor {
	return VendorOpenAI
}

// Chat отправляет сообщения в OpenAI как есть: преамбула остается обычным сообщением с ролью system.
func (c *OpenAIClient) Chat(ctx context.Context, params ChatParams) (Completion, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return Completion{}, errors.New("openai api key is missing")
	}

	messages := make([]openAIMessage, 0, len(params.Messages))
	for _, message := range params.Messages {
		messages = append(messages, openAIMessage{Role: string(message.Role), Content: message.Content})
	}

	reqBody := openAIChatRequest{
		Model:    params.Model,
		Messages: messages,
	}

	// reasoning-модели (o1, o3, ...) не принимают temperature и max_tokens
	maxTokens := params.MaxTokens
	if isReasoningModel(params.Model) {
		reqBody.MaxCompletionTokens = &maxTokens
	} else {
		temperature := params.Temperature
		reqBody.Temperature = &temperature
		reqBody.MaxTokens = &maxTokens
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.apiKey)

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	status, body, err := postJSON(ctx, c.httpClient, VendorOpenAI, endpoint, headers, reqBody)
	if err != nil {
		return Completion{}, err
	}

	if status < 200 || status >= 300 {
		var apiErr openAIChatResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return Completion{Raw: body}, &VendorAPIError{Vendor: VendorOpenAI, StatusCode: status, Message: apiErr.Error.Message}
		}
		return Completion{Raw: body}, &VendorAPIError{Vendor: VendorOpenAI, StatusCode: status, Message: truncateBody(body)}
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{Raw: body}, &MalformedResponseError{Vendor: VendorOpenAI, Reason: err.Error()}
	}

	if len(parsed.Choices) == 0 {
		return Completion{Raw: body}, &MalformedResponseError{Vendor: VendorOpenAI, Reason: "response missing choices"}
	}

	for _, choice := range parsed.Choices {
		if choice.Message.Content == "" {
			continue
		}
		return Completion{
			Text:         choice.Message.Content,
			Raw:          body,
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		}, nil
	}

	return Completion{Raw: body}, &MalformedResponseError{Vendor: VendorOpenAI, Reason: "response missing text content"}
}
