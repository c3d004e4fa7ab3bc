package identity

import (
	"context"
	"time"

	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
)

var ErrNoIdentity = apperrors.WrapWithCode(apperrors.ErrUnauthenticated, "no_identity", "request carries no user identity")

// Client answers "who is the current user".
type Client interface {
	// Authenticate validates a bearer token and returns its user id.
	Authenticate(token string) (string, error)
	// Issue signs a token for userID, valid for ttl.
	Issue(userID string, ttl time.Duration) (string, error)
	CurrentUserID(ctx context.Context) (string, error)
}

type ctxKey struct{}

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
