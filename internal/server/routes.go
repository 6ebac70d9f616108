package server

import (
	"github.com/labstack/echo/v4"

	"example.com/chat-relay/internal/handlers"
)

type routeSet struct {
	chat           *handlers.ChatHandler
	catalog        *handlers.CatalogHandler
	admin          *handlers.AdminHandler
	authMiddleware echo.MiddlewareFunc
	chatRateLimit  echo.MiddlewareFunc
	metrics        bool
}

func registerRoutes(e *echo.Echo, routes routeSet) {
	e.GET("/health", handlers.Health)
	if routes.metrics {
		e.GET("/metrics", metricsHandler())
	}

	chatMiddleware := []echo.MiddlewareFunc{routes.chatRateLimit}
	if routes.authMiddleware != nil {
		chatMiddleware = append(chatMiddleware, routes.authMiddleware)
	}

	e.POST("/chat", routes.chat.Chat, chatMiddleware...)

	api := e.Group("/api/v1")
	api.POST("/chat", routes.chat.Chat, chatMiddleware...)
	api.GET("/models", routes.catalog.List)

	if routes.admin != nil {
		admin := api.Group("/admin")
		if routes.authMiddleware != nil {
			admin.Use(routes.authMiddleware)
		}
		admin.GET("/requests", routes.admin.ListRequests)
	}
}
