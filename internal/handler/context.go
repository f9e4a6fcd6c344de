package handler

import (
	"context"

	"shoecatalog/internal/middleware"
	"shoecatalog/internal/usecase"

	"github.com/labstack/echo/v4"
)

// middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// 監査ログ用に操作ユーザーを載せたcontext
func actorContext(c echo.Context) (context.Context, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return nil, false
	}
	return usecase.WithActor(c.Request().Context(), id), true
}
