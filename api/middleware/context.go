package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxCartSession contextKey = "cart_session"
	ctxCartIssued  contextKey = "cart_session_issued"
	ctxBakeryID    contextKey = "bakery_id"
)

// CartSessionFromContext returns the session id resolved by CartSession.
func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}

// CartSessionIssued reports whether CartSession generated the session id
// because the client did not send one.
func CartSessionIssued(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	issued, _ := ctx.Value(ctxCartIssued).(bool)
	return issued
}

// BakeryIDFromContext returns the bakery resolved by BakeryContext.
func BakeryIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(ctxBakeryID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func WithCartSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, sessionID)
}

func withIssuedCartSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(WithCartSession(ctx, sessionID), ctxCartIssued, true)
}

func WithBakeryID(ctx context.Context, bakeryID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBakeryID, bakeryID)
}
