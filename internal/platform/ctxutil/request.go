package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries the authenticated caller's identity and request
// metadata through the call stack. Audit-log attribution and prediction
// ownership read it instead of any global request state.
type RequestData struct {
	UserID    uuid.UUID
	UserRole  string
	IP        string
	UserAgent string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// UserID returns the caller's user id, or uuid.Nil when the context is
// unauthenticated (startup jobs, CLI tools).
func UserID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}
