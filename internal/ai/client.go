package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"example.com/chat-relay/internal/models"
)

type Message = models.ChatMessage

// ChatParams несет нормализованный список: преамбула (если есть) идет первым сообщением с ролью system.
type ChatParams struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type Completion struct {
	Text         string
	Raw          []byte
	InputTokens  int
	OutputTokens int
}

// Client это адаптер одного вендора chat-completion API.
type Client interface {
	Name() string
	Vendor() Vendor
	Chat(ctx context.Context, params ChatParams) (Completion, error)
}

const (
	defaultMaxTokens = 2048
	maxErrorBody     = 4096
)

// postJSON выполняет один POST-запрос без ретраев и возвращает статус и тело ответа.
func postJSON(ctx context.Context, client *http.Client, vendor Vendor, endpoint string, headers http.Header, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s request: %w", vendor, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", vendor, err)
	}

	for key, values := range headers {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return 0, nil, mapTransportError(vendor, client.Timeout, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, mapTransportError(vendor, client.Timeout, err)
	}

	return response.StatusCode, raw, nil
}

func mapTransportError(vendor Vendor, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Vendor: vendor, Timeout: timeout}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Vendor: vendor, Timeout: timeout}
	}

	return &VendorAPIError{Vendor: vendor, Message: err.Error(), Err: err}
}

func truncateBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > maxErrorBody {
		trimmed = trimmed[:maxErrorBody]
	}
	return string(trimmed)
}
