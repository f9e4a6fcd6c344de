package middleware

import (
	"context"
	"time"

	"shoecatalog/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestContext はechoのRequestIDが付けたIDをrequestのcontextにも載せる。
// usecase/handlerのログにrequest_idが出るようになる。
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequestLogger は1リクエスト1行のアクセスログ
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				//echoのHTTPErrorなどはここでレスポンスにする
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			log.WithContext(req.Context()).Info("http request",
				"method", req.Method,
				"path", req.URL.Path,
				"query", req.URL.RawQuery,
				"status", res.Status,
				"bytes", res.Size,
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			return nil
		}
	}
}
