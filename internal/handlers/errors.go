package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/chat-relay/internal/ai"
	"example.com/chat-relay/internal/models"
)

const unknownErrorText = "An unknown error occurred."

// ErrorText превращает ошибку в текст для оператора.
// Ошибки вендора получают префикс продукта, прочие ошибки отдаются как есть.
func ErrorText(err error) string {
	if err == nil {
		return unknownErrorText
	}

	var timeoutErr *ai.TimeoutError
	var apiErr *ai.VendorAPIError

	switch {
	case errors.As(err, &timeoutErr):
		text := vendorPrefix(timeoutErr.Vendor) + " request timed out"
		if timeoutErr.Timeout > 0 {
			text += fmt.Sprintf(" after %s", timeoutErr.Timeout)
		}
		return text
	case errors.As(err, &apiErr):
		return vendorPrefix(apiErr.Vendor) + " " + apiErr.Message
	}

	if message := strings.TrimSpace(err.Error()); message != "" {
		return message
	}
	return unknownErrorText
}

func vendorPrefix(vendor ai.Vendor) string {
	if name := vendor.DisplayName(); name != "" {
		return name + " error:"
	}
	return "API Error:"
}

// HTTPErrorHandler отдает ошибки echo и middleware в том же конверте, что и /chat.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		text := ErrorText(err)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			text = fmt.Sprint(httpErr.Message)
			if httpErr.Internal != nil {
				logger.Debug("http error", slog.String("internal", httpErr.Internal.Error()))
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("unhandled error", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, models.NewErrorBody(text))
		}
		if writeErr != nil {
			logger.Error("write error response failed", slog.String("error", writeErr.Error()))
		}
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.NewErrorBody(message))
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.NewErrorBody("internal server error"))
}
