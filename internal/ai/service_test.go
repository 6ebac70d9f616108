package ai

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"example.com/chat-relay/internal/models"
)

type recorderStub struct {
	logs []models.RequestLog
	err  error
}

func (r *recorderStub) Record(_ context.Context, log models.RequestLog) error {
	r.logs = append(r.logs, log)
	return r.err
}

func newTestService(clients ...Client) (*Service, *recorderStub) {
	recorder := &recorderStub{}
	service := NewService(NewRouter(clients...), ServiceConfig{
		SystemPrompt:       testPreamble,
		DefaultTemperature: 0.2,
		DefaultMaxTokens:   2048,
	}, recorder, nil)
	return service, recorder
}

// TestServiceChatClaudeScenario проверяет сквозной сценарий с пустой историей.
func TestServiceChatClaudeScenario(t *testing.T) {
	anthropic := &stubClient{vendor: VendorAnthropic, reply: Completion{Text: "hey", InputTokens: 5, OutputTokens: 1}}
	openai := &stubClient{vendor: VendorOpenAI}
	service, recorder := newTestService(anthropic, openai)

	temperature := 0.2
	maxTokens := 100
	result, err := service.Chat(context.Background(), Request{
		RequestID:   "req-1",
		Model:       "claude-3-5-sonnet-20241022",
		Message:     "hi",
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(openai.params) != 0 {
		t.Fatal("openai adapter must not be called")
	}
	if len(anthropic.params) != 1 {
		t.Fatalf("expected exactly one vendor call, got %d", len(anthropic.params))
	}

	params := anthropic.params[0]
	wantMessages := []Message{
		{Role: models.RoleSystem, Content: testPreamble},
		{Role: models.RoleUser, Content: "hi"},
	}
	if !reflect.DeepEqual(params.Messages, wantMessages) {
		t.Fatalf("unexpected outbound messages %v", params.Messages)
	}
	if params.Temperature != 0.2 || params.MaxTokens != 100 || params.Model != "claude-3-5-sonnet-20241022" {
		t.Fatalf("unexpected params %+v", params)
	}

	wantHistory := []Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hey"},
	}
	if result.Reply != "hey" || !reflect.DeepEqual(result.History, wantHistory) {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(recorder.logs) != 1 {
		t.Fatalf("expected one request log, got %d", len(recorder.logs))
	}
	log := recorder.logs[0]
	if !log.Success || log.Vendor != "anthropic" || log.RequestID != "req-1" || log.InputTokens != 5 {
		t.Fatalf("unexpected request log %+v", log)
	}
}

// TestServiceChatDefaults проверяет значения по умолчанию для temperature и max tokens.
func TestServiceChatDefaults(t *testing.T) {
	openai := &stubClient{vendor: VendorOpenAI, reply: Completion{Text: "ok"}}
	service, _ := newTestService(openai)

	if _, err := service.Chat(context.Background(), Request{Model: models.ModelGPT4, Message: "x"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := service.Chat(context.Background(), Request{Model: "gpt-4o-mini", Message: "x"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if openai.params[0].Temperature != 0.2 || openai.params[0].MaxTokens != 4096 {
		t.Fatalf("expected catalogue defaults, got %+v", openai.params[0])
	}
	if openai.params[1].MaxTokens != 2048 {
		t.Fatalf("expected configured default, got %d", openai.params[1].MaxTokens)
	}
}

// TestServiceChatUnsupportedModel проверяет отказ без вызова вендора.
func TestServiceChatUnsupportedModel(t *testing.T) {
	anthropic := &stubClient{vendor: VendorAnthropic}
	service, recorder := newTestService(anthropic)

	_, err := service.Chat(context.Background(), Request{Model: "unknown-model-x", Message: "hi"})
	var unsupported *UnsupportedModelError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedModelError, got %v", err)
	}
	if len(anthropic.params) != 0 {
		t.Fatal("vendor must not be called")
	}
	if len(recorder.logs) != 1 || recorder.logs[0].Success || *recorder.logs[0].ErrorKind != KindUnsupportedModel {
		t.Fatalf("unexpected request log %+v", recorder.logs)
	}
}

// TestServiceChatVendorError проверяет проброс ошибки вендора без ретраев.
func TestServiceChatVendorError(t *testing.T) {
	anthropic := &stubClient{vendor: VendorAnthropic, err: &VendorAPIError{Vendor: VendorAnthropic, StatusCode: 529, Message: "overloaded"}}
	service, recorder := newTestService(anthropic)
	recorder.err = errors.New("db down")

	_, err := service.Chat(context.Background(), Request{Model: "claude-3-haiku", Message: "hi"})
	var apiErr *VendorAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected VendorAPIError, got %v", err)
	}
	if len(anthropic.params) != 1 {
		t.Fatalf("expected single attempt, got %d", len(anthropic.params))
	}
}

// TestServiceChatPassesExplicitMaxTokens проверяет, что явный max tokens уходит вендору без подмены.
func TestServiceChatPassesExplicitMaxTokens(t *testing.T) {
	var captured anthropicRequest
	server := newAnthropicServer(t, http.StatusBadRequest,
		`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: must be greater than or equal to 1"}}`, &captured)
	defer server.Close()

	client := NewAnthropicClient("test-key", server.URL+"/v1", "", time.Second)
	service, recorder := newTestService(client)

	maxTokens := -5
	_, err := service.Chat(context.Background(), Request{
		Model:     models.ModelClaudeSonnet,
		Message:   "hi",
		MaxTokens: &maxTokens,
	})

	if captured.MaxTokens != -5 {
		t.Fatalf("expected max_tokens -5 in vendor payload, got %d", captured.MaxTokens)
	}

	var apiErr *VendorAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected VendorAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || !strings.Contains(apiErr.Message, "max_tokens") {
		t.Fatalf("unexpected vendor error %+v", apiErr)
	}
	if len(recorder.logs) != 1 || *recorder.logs[0].ErrorKind != KindVendorAPI {
		t.Fatalf("unexpected request log %+v", recorder.logs)
	}
}
