package auth

import (
	"context"
	"errors"
	"time"
)

type ctxKey int

const ctxIdentity ctxKey = iota

var ErrNoIdentity = errors.New("identity not in context")

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

func FromContext(ctx context.Context) (Identity, error) {
	if id, ok := ctx.Value(ctxIdentity).(Identity); ok && id.UserID != "" {
		return id, nil
	}
	return Identity{}, ErrNoIdentity
}

// Actor is the name recorded on audit entries for the caller.
func Actor(ctx context.Context) string {
	id, err := FromContext(ctx)
	if err != nil {
		return ""
	}
	return id.Email
}
