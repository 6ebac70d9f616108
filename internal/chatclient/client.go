// Package chatclient держит состояние разговора на стороне клиента и отправляет его в /chat.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"example.com/chat-relay/internal/models"
	"example.com/chat-relay/internal/render"
)

// Apology показывается в транскрипте вместо ответа при любой ошибке отправки.
const Apology = "Sorry, an error occurred."

const (
	defaultTemperature = 0.1
	defaultTimeout     = 90 * time.Second
	maxErrorBody       = 1 << 16
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrModelChanged = errors.New("model changed while the message was in flight")
)

// ServerError содержит текст из конверта ошибки relay.
type ServerError struct {
	StatusCode int
	Text       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("chat relay error (status %d): %s", e.StatusCode, e.Text)
}

type Entry struct {
	Role models.Role
	Text string
	HTML template.HTML
}

type Options struct {
	BaseURL     string
	Model       string
	Token       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	baseURL     string
	token       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	inFlight    *semaphore.Weighted

	mu         sync.Mutex
	model      string
	generation uint64
	history    []models.ChatMessage
	transcript []Entry
}

// New создает клиента чата.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	temperature := defaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	model := opts.Model
	if model == "" {
		model = models.ModelClaudeSonnet
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		temperature: temperature,
		maxTokens:   opts.MaxTokens,
		httpClient:  httpClient,
		inFlight:    semaphore.NewWeighted(1),
		model:       model,
	}
}

// Model возвращает выбранную модель.
func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetModel переключает модель и начинает разговор заново.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.model = model
	c.resetLocked()
}

// Clear очищает историю и транскрипт без смены модели.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Client) resetLocked() {
	c.generation++
	c.history = nil
	c.transcript = nil
}

// History возвращает копию истории, полученной от сервера.
func (c *Client) History() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.history...)
}

// Transcript возвращает копию отображаемых сообщений.
func (c *Client) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.transcript...)
}

// Send отправляет сообщение и ждет ответ. Одновременно выполняется не больше одной отправки.
// При ошибке в транскрипт добавляется извинение, а ошибка возвращается вызывающему.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	if err := c.inFlight.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	c.appendLocked(models.RoleUser, text)
	generation := c.generation
	payload := c.requestLocked(text)
	c.mu.Unlock()

	resp, err := c.post(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return "", ErrModelChanged
	}

	if err != nil {
		c.appendLocked(models.RoleAssistant, Apology)
		return "", err
	}

	c.history = resp.History
	c.appendLocked(models.RoleAssistant, resp.Response)
	return resp.Response, nil
}

func (c *Client) appendLocked(role models.Role, text string) {
	c.transcript = append(c.transcript, Entry{
		Role: role,
		Text: text,
		HTML: render.FormatMessage(text),
	})
}

func (c *Client) requestLocked(text string) models.ChatRequest {
	history := make([]models.ChatMessage, 0, len(c.history))
	for _, msg := range c.history {
		role := models.RoleAssistant
		if msg.Role == models.RoleUser {
			role = models.RoleUser
		}
		history = append(history, models.ChatMessage{Role: role, Content: msg.Content})
	}

	temperature := c.temperature
	req := models.ChatRequest{
		Message:        text,
		MessageHistory: history,
		Temperature:    &temperature,
		Model:          c.model,
	}

	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		if info, ok := models.LookupModel(c.model); ok {
			maxTokens = info.MaxTokens
		}
	}
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}

	return req
}

func (c *Client) post(ctx context.Context, payload models.ChatRequest) (models.ChatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("send chat request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return models.ChatResponse{}, decodeServerError(res)
	}

	var out models.ChatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return models.ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	if out.Response == "" {
		return models.ChatResponse{}, errors.New("invalid response format")
	}

	return out, nil
}

func decodeServerError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	var items []models.ErrorItem
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0].Text != "" {
		return &ServerError{StatusCode: res.StatusCode, Text: items[0].Text}
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = http.StatusText(res.StatusCode)
	}
	return &ServerError{StatusCode: res.StatusCode, Text: text}
}
