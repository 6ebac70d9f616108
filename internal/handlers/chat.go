package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"example.com/chat-relay/internal/ai"
	"example.com/chat-relay/internal/auth"
	"example.com/chat-relay/internal/models"
)

type ChatService interface {
	Chat(ctx context.Context, req ai.Request) (ai.Result, error)
}

type ChatHandler struct {
	Service ChatService
}

// NewChatHandler создает обработчик чата.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

// Chat пересылает сообщение вендору и возвращает ответ с обновленной историей.
// Любая ошибка отдается как 500 с телом [{type:"error", text}].
func (h *ChatHandler) Chat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return chatError(c, errors.New("invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return chatError(c, describeValidation(err))
	}

	subject, _ := auth.SubjectFromContext(c)

	result, err := h.Service.Chat(c.Request().Context(), ai.Request{
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
		Subject:     subject,
		Model:       req.Model,
		Message:     req.Message,
		History:     req.MessageHistory,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return chatError(c, err)
	}

	history := result.History
	if history == nil {
		history = []models.ChatMessage{}
	}

	return c.JSON(http.StatusOK, models.ChatResponse{
		Response: result.Reply,
		History:  history,
	})
}

func chatError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, models.NewErrorBody(ErrorText(err)))
}

func describeValidation(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fieldPath(fieldErr)))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", fieldPath(fieldErr), fieldErr.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", fieldPath(fieldErr)))
		}
	}

	return fmt.Errorf("validation failed: %s", strings.Join(problems, "; "))
}

func fieldPath(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
