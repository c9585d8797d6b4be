package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey ctxKey = "userID"
	ContextRoleKey ctxKey = "roleID"
)

// OperatorFromContext returns the operator the screen guard admitted, if any.
func OperatorFromContext(ctx context.Context) (userID string, roleID int, ok bool) {
	if ctx == nil {
		return "", 0, false
	}
	userID, ok = ctx.Value(ContextUserKey).(string)
	if !ok {
		return "", 0, false
	}
	roleID, _ = ctx.Value(ContextRoleKey).(int)
	return userID, roleID, true
}

func ContextWithOperator(ctx context.Context, userID string, roleID int) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, userID)
	return context.WithValue(ctx, ContextRoleKey, roleID)
}

// DetachedTimeout keeps ctx's values but not its cancellation, bounded by duration
// (5 seconds when zero or negative). Logout calls use it so they finish after the
// request or command that triggered them has gone.
func DetachedTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(ctx), duration)
}
