package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const ContextSubjectKey = "subject"

// JWTMiddleware проверяет access-токен и сохраняет subject в контексте.
func JWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := manager.ParseAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ContextSubjectKey, claims.Subject)
			return next(c)
		}
	}
}

// SubjectFromContext извлекает subject токена из контекста.
func SubjectFromContext(c echo.Context) (string, bool) {
	subject, ok := c.Get(ContextSubjectKey).(string)
	return subject, ok && subject != ""
}
