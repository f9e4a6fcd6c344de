package usecase

import "context"

type actorKey struct{}

// WithActor は操作したユーザーのIDをcontextに載せる（監査ログ用）
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// 載っていなければ0
func actorFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey{}).(int64)
	return id
}
