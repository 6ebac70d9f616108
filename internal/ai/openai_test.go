package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/chat-relay/internal/models"
)

func newOpenAIServer(t *testing.T, status int, body string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

// TestOpenAIChatKeepsSystemMessage проверяет, что преамбула уходит обычным system-сообщением.
func TestOpenAIChatKeepsSystemMessage(t *testing.T) {
	var captured map[string]interface{}
	server := newOpenAIServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"pong"}}],"usage":{"prompt_tokens":7,"completion_tokens":1}}`, &captured)
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL+"/v1", time.Second)
	completion, err := client.Chat(context.Background(), ChatParams{
		Model: "gpt-4-0125-preview",
		Messages: []Message{
			{Role: models.RoleSystem, Content: "preamble"},
			{Role: models.RoleUser, Content: "ping"},
		},
		Temperature: 0.5,
		MaxTokens:   64,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completion.Text != "pong" || completion.InputTokens != 7 || completion.OutputTokens != 1 {
		t.Fatalf("unexpected completion %+v", completion)
	}

	messages, ok := captured["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages %v", captured["messages"])
	}
	first := messages[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "preamble" {
		t.Fatalf("expected system message first, got %v", first)
	}
	if captured["max_tokens"] != float64(64) || captured["temperature"] != 0.5 {
		t.Fatalf("unexpected generation params %v", captured)
	}
	if _, ok := captured["max_completion_tokens"]; ok {
		t.Fatal("max_completion_tokens must not be sent for gpt models")
	}
}

// TestOpenAIChatReasoningModel проверяет параметры для o-серии.
func TestOpenAIChatReasoningModel(t *testing.T) {
	var captured map[string]interface{}
	server := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`, &captured)
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL+"/v1", time.Second)
	_, err := client.Chat(context.Background(), ChatParams{
		Model:       "o1-2024-12-17",
		Messages:    []Message{{Role: models.RoleUser, Content: "think"}},
		Temperature: 0.2,
		MaxTokens:   4096,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if captured["max_completion_tokens"] != float64(4096) {
		t.Fatalf("expected max_completion_tokens, got %v", captured)
	}
	if _, ok := captured["temperature"]; ok {
		t.Fatal("temperature must not be sent for reasoning models")
	}
	if _, ok := captured["max_tokens"]; ok {
		t.Fatal("max_tokens must not be sent for reasoning models")
	}
}

// TestOpenAIChatMalformed проверяет ответ без текста.
func TestOpenAIChatMalformed(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, `{"choices":[{"message":{"content":""}}]}`, `not json`} {
		server := newOpenAIServer(t, http.StatusOK, body, nil)

		client := NewOpenAIClient("test-key", server.URL+"/v1", time.Second)
		_, err := client.Chat(context.Background(), ChatParams{Model: "gpt-4", Messages: []Message{{Role: models.RoleUser, Content: "x"}}})
		server.Close()

		var malformed *MalformedResponseError
		if !errors.As(err, &malformed) {
			t.Fatalf("body %q: expected MalformedResponseError, got %v", body, err)
		}
	}
}

// TestOpenAIChatAPIError проверяет ошибку лимита запросов.
func TestOpenAIChatAPIError(t *testing.T) {
	server := newOpenAIServer(t, http.StatusTooManyRequests, `{"error":{"message":"rate limit reached"}}`, nil)
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL+"/v1", time.Second)
	_, err := client.Chat(context.Background(), ChatParams{Model: "gpt-4", Messages: []Message{{Role: models.RoleUser, Content: "x"}}})

	var apiErr *VendorAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected VendorAPIError, got %v", err)
	}
	if apiErr.Vendor != VendorOpenAI || apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "rate limit reached" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

// TestOpenAIChatNetworkError проверяет ошибку соединения.
func TestOpenAIChatNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewOpenAIClient("test-key", url, time.Second)
	_, err := client.Chat(context.Background(), ChatParams{Model: "gpt-4", Messages: []Message{{Role: models.RoleUser, Content: "x"}}})

	var apiErr *VendorAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected VendorAPIError, got %v", err)
	}
}

// TestOpenAIChatPassesExplicitMaxTokens проверяет, что отрицательный max_tokens не подменяется.
func TestOpenAIChatPassesExplicitMaxTokens(t *testing.T) {
	var captured map[string]interface{}
	server := newOpenAIServer(t, http.StatusBadRequest,
		`{"error":{"message":"Invalid 'max_tokens': integer below minimum value."}}`, &captured)
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL+"/v1", time.Second)
	_, err := client.Chat(context.Background(), ChatParams{
		Model:     "gpt-4-0125-preview",
		Messages:  []Message{{Role: models.RoleUser, Content: "x"}},
		MaxTokens: -5,
	})

	if captured["max_tokens"] != float64(-5) {
		t.Fatalf("expected max_tokens -5, got %v", captured["max_tokens"])
	}
	var apiErr *VendorAPIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected VendorAPIError 400, got %v", err)
	}
}
