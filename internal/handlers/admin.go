package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/chat-relay/internal/models"
	"example.com/chat-relay/internal/repository"
)

const timeLayout = time.RFC3339

type RequestLogStore interface {
	List(ctx context.Context, filter repository.RequestLogFilter, limit, offset int) ([]models.RequestLog, error)
	Count(ctx context.Context, filter repository.RequestLogFilter) (int, error)
}

type AdminHandler struct {
	Repo RequestLogStore
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(repo RequestLogStore) *AdminHandler {
	return &AdminHandler{Repo: repo}
}

type RequestLogResponse struct {
	ID            string  `json:"id"`
	RequestID     string  `json:"request_id"`
	Subject       *string `json:"subject,omitempty"`
	Vendor        string  `json:"vendor"`
	Model         string  `json:"model"`
	HistoryLength int     `json:"history_length"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	LatencyMS     int64   `json:"latency_ms"`
	Success       bool    `json:"success"`
	ErrorKind     *string `json:"error_kind,omitempty"`
	ErrorMessage  *string `json:"error_message,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type RequestLogsResponse struct {
	Total    int                  `json:"total"`
	Requests []RequestLogResponse `json:"requests"`
}

// ListRequests возвращает журнал вызовов вендоров с фильтрами.
func (h *AdminHandler) ListRequests(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	filter := repository.RequestLogFilter{}
	if raw := strings.TrimSpace(c.QueryParam("vendor")); raw != "" {
		filter.Vendor = &raw
	}
	if raw := strings.TrimSpace(c.QueryParam("model")); raw != "" {
		filter.Model = &raw
	}
	if raw := strings.TrimSpace(c.QueryParam("subject")); raw != "" {
		filter.Subject = &raw
	}
	if raw := strings.TrimSpace(c.QueryParam("success")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid success")
		}
		filter.Success = &parsed
	}

	logs, err := h.Repo.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Repo.Count(c.Request().Context(), filter)
	if err != nil {
		return serverError(c)
	}

	response := make([]RequestLogResponse, 0, len(logs))
	for _, log := range logs {
		response = append(response, RequestLogResponse{
			ID:            log.ID.String(),
			RequestID:     log.RequestID,
			Subject:       log.Subject,
			Vendor:        log.Vendor,
			Model:         log.Model,
			HistoryLength: log.HistoryLength,
			InputTokens:   log.InputTokens,
			OutputTokens:  log.OutputTokens,
			LatencyMS:     log.LatencyMS,
			Success:       log.Success,
			ErrorKind:     log.ErrorKind,
			ErrorMessage:  log.ErrorMessage,
			CreatedAt:     log.CreatedAt.Format(timeLayout),
		})
	}

	return c.JSON(http.StatusOK, RequestLogsResponse{Total: total, Requests: response})
}

func parsePagination(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if parsed > maxLimit {
			parsed = maxLimit
		}
		limit = parsed
	}

	offset := 0
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}

	return limit, offset, nil
}
