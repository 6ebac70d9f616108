package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"example.com/chat-relay/internal/ai"
	"example.com/chat-relay/internal/auth"
	"example.com/chat-relay/internal/config"
	"example.com/chat-relay/internal/handlers"
	"example.com/chat-relay/internal/observability"
	"example.com/chat-relay/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
// db может быть nil: тогда журнал запросов и админские роуты отключены.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(requestLogger(logger))
	e.Use(corsMiddleware(cfg.Server))
	if cfg.Metrics.Enabled {
		e.Use(observability.Middleware())
	}

	router := ai.NewRouter(vendorClients(cfg.AI)...)

	var recorder ai.RequestRecorder
	var adminHandler *handlers.AdminHandler
	if db != nil {
		requestLogRepo := repository.NewRequestLogRepository(db)
		recorder = requestLogRepo
		adminHandler = handlers.NewAdminHandler(requestLogRepo)
	}

	chatService := ai.NewService(router, ai.ServiceConfig{
		SystemPrompt:       cfg.AI.SystemPrompt,
		DefaultTemperature: cfg.AI.DefaultTemperature,
		DefaultMaxTokens:   cfg.AI.DefaultMaxTokens,
	}, recorder, logger)

	var authMiddleware echo.MiddlewareFunc
	if cfg.Auth.Enabled() {
		tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		authMiddleware = auth.JWTMiddleware(tokenManager)
	}

	registerRoutes(e, routeSet{
		chat:           handlers.NewChatHandler(chatService),
		catalog:        handlers.NewCatalogHandler(router),
		admin:          adminHandler,
		authMiddleware: authMiddleware,
		chatRateLimit:  chatRateLimiter(cfg.AI),
		metrics:        cfg.Metrics.Enabled,
	})

	logger.Info("chat relay configured",
		slog.Bool("anthropic", router.Configured(ai.VendorAnthropic)),
		slog.Bool("openai", router.Configured(ai.VendorOpenAI)),
		slog.Bool("request_log", db != nil),
		slog.Bool("auth", cfg.Auth.Enabled()),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func vendorClients(cfg config.AIConfig) []ai.Client {
	clients := make([]ai.Client, 0, 2)
	if cfg.AnthropicAPIKey != "" {
		clients = append(clients, ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicVersion, cfg.Timeout))
	}
	if cfg.OpenAIAPIKey != "" {
		clients = append(clients, ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Timeout))
	}
	return clients
}

func newRequestID() string {
	return uuid.NewString()
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func corsMiddleware(cfg config.ServerConfig) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	})
}

func chatRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			observability.RateLimitRejectedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

func metricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
