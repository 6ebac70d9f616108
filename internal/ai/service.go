package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/chat-relay/internal/models"
	"example.com/chat-relay/internal/observability"
)

// RequestRecorder сохраняет метаданные вызова вендора. Содержимое переписки не передается.
type RequestRecorder interface {
	Record(ctx context.Context, log models.RequestLog) error
}

type ServiceConfig struct {
	SystemPrompt       string
	DefaultTemperature float64
	DefaultMaxTokens   int
}

type Request struct {
	RequestID   string
	Subject     string
	Model       string
	Message     string
	History     []Message
	Temperature *float64
	MaxTokens   *int
}

type Result struct {
	Reply   string
	History []Message
	Vendor  Vendor
}

type Service struct {
	router   *Router
	cfg      ServiceConfig
	recorder RequestRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService создает сервис чата поверх роутера вендоров.
func NewService(router *Router, cfg ServiceConfig, recorder RequestRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		router:   router,
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Chat выполняет один вызов вендора и возвращает ответ с обновленной историей.
func (s *Service) Chat(ctx context.Context, req Request) (Result, error) {
	client, vendor, err := s.router.Resolve(req.Model)
	if err != nil {
		s.logger.Warn("chat model rejected", slog.String("model", req.Model), slog.String("error", err.Error()))
		s.record(ctx, req, vendor, Completion{}, 0, err)
		return Result{}, err
	}

	params := ChatParams{
		Model:       req.Model,
		Messages:    BuildOutbound(s.cfg.SystemPrompt, req.History, req.Message),
		Temperature: s.temperature(req.Temperature),
		MaxTokens:   s.maxTokens(req.Model, req.MaxTokens),
	}

	started := s.now()
	completion, err := client.Chat(ctx, params)
	latency := s.now().Sub(started)

	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	observability.ObserveVendorCall(vendor.String(), outcome, latency, completion.InputTokens, completion.OutputTokens)
	s.record(ctx, req, vendor, completion, latency, err)

	if err != nil {
		s.logger.Error("chat vendor call failed",
			slog.String("vendor", vendor.String()),
			slog.String("model", req.Model),
			slog.String("kind", outcome),
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		return Result{}, err
	}

	s.logger.Info("chat completed",
		slog.String("vendor", vendor.String()),
		slog.String("model", req.Model),
		slog.Int("history", len(req.History)),
		slog.Duration("latency", latency),
	)

	return Result{
		Reply:   completion.Text,
		History: BuildReturned(s.cfg.SystemPrompt, req.History, req.Message, completion.Text),
		Vendor:  vendor,
	}, nil
}

func (s *Service) temperature(value *float64) float64 {
	if value != nil {
		return *value
	}
	return s.cfg.DefaultTemperature
}

// maxTokens подставляет значение по умолчанию только для отсутствующего поля.
// Явное значение уходит вендору как есть, диапазон проверяет вендор.
func (s *Service) maxTokens(model string, value *int) int {
	if value != nil {
		return *value
	}
	if info, ok := models.LookupModel(model); ok {
		return info.MaxTokens
	}
	if s.cfg.DefaultMaxTokens > 0 {
		return s.cfg.DefaultMaxTokens
	}
	return defaultMaxTokens
}

func (s *Service) record(ctx context.Context, req Request, vendor Vendor, completion Completion, latency time.Duration, err error) {
	if s.recorder == nil {
		return
	}

	entry := models.RequestLog{
		ID:            uuid.New(),
		RequestID:     req.RequestID,
		Vendor:        vendor.String(),
		Model:         req.Model,
		HistoryLength: len(req.History),
		InputTokens:   completion.InputTokens,
		OutputTokens:  completion.OutputTokens,
		LatencyMS:     latency.Milliseconds(),
		Success:       err == nil,
		CreatedAt:     s.now().UTC(),
	}
	if req.Subject != "" {
		subject := req.Subject
		entry.Subject = &subject
	}
	if err != nil {
		kind := ErrorKind(err)
		message := err.Error()
		entry.ErrorKind = &kind
		entry.ErrorMessage = &message
	}

	if recErr := s.recorder.Record(ctx, entry); recErr != nil {
		s.logger.Warn("request log write failed", slog.String("error", recErr.Error()))
	}
}
