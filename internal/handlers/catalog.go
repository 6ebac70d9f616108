package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/chat-relay/internal/ai"
	"example.com/chat-relay/internal/models"
)

type ModelResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Vendor     string `json:"vendor"`
	MaxTokens  int    `json:"max_tokens"`
	Configured bool   `json:"configured"`
}

type CatalogHandler struct {
	Router *ai.Router
}

// NewCatalogHandler создает обработчик списка моделей.
func NewCatalogHandler(router *ai.Router) *CatalogHandler {
	return &CatalogHandler{Router: router}
}

// List возвращает модели клиента с отметкой, настроен ли их вендор.
func (h *CatalogHandler) List(c echo.Context) error {
	catalog := models.Catalog()
	response := make([]ModelResponse, 0, len(catalog))
	for _, info := range catalog {
		vendor := ai.Classify(info.ID)
		response = append(response, ModelResponse{
			ID:         info.ID,
			Label:      info.Label,
			Vendor:     vendor.String(),
			MaxTokens:  info.MaxTokens,
			Configured: h.Router.Configured(vendor),
		})
	}

	return c.JSON(http.StatusOK, map[string][]ModelResponse{"models": response})
}
