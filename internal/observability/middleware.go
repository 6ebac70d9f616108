package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// Middleware считает запросы и их длительность по шаблону маршрута echo.
// Запрос с паникой учитывается как 5xx до того, как его перехватит Recover.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			panicked := true

			defer func() {
				status := http.StatusInternalServerError
				if !panicked {
					status = responseStatus(c, err)
				}

				route := c.Path()
				if route == "" {
					route = "unmatched"
				}

				method := c.Request().Method
				RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status/100)+"xx").Inc()
				RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			}()

			err = next(c)
			panicked = false
			return err
		}
	}
}

func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	// ответ уже записан, ошибка пришла после него
	if c.Response().Committed {
		return c.Response().Status
	}

	return http.StatusInternalServerError
}
