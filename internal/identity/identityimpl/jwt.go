package identityimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sadaqat12/snapconnect/internal/identity"
	"github.com/sadaqat12/snapconnect/pkg/config"
	apperrors "github.com/sadaqat12/snapconnect/pkg/errors"
	"github.com/sadaqat12/snapconnect/pkg/logger"
	"go.uber.org/fx"
)

var (
	ErrInvalidToken = apperrors.WrapWithCode(apperrors.ErrUnauthenticated, "invalid_token", "invalid bearer token")
	ErrNoSecret     = errors.New("jwt secret is not configured")
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// JWTClient validates HS256 tokens whose subject is the user id.
type JWTClient struct {
	secret []byte
	issuer string
	logger logger.Logger
	now    func() time.Time
}

func New(opts Opts) (*JWTClient, error) {
	if opts.Config.Auth.JWTSecret == "" {
		if opts.Config.IsProduction() {
			return nil, ErrNoSecret
		}
		opts.Logger.Warn("AUTH_JWT_SECRET is empty, using an insecure development secret")
		return NewJWTClient("dev-secret", opts.Config.Auth.Issuer, opts.Logger), nil
	}
	return NewJWTClient(opts.Config.Auth.JWTSecret, opts.Config.Auth.Issuer, opts.Logger), nil
}

func NewJWTClient(secret, issuer string, log logger.Logger) *JWTClient {
	return &JWTClient{
		secret: []byte(secret),
		issuer: issuer,
		logger: log.WithComponent("Identity"),
		now:    time.Now,
	}
}

var _ identity.Client = (*JWTClient)(nil)

func (c *JWTClient) Issue(userID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (c *JWTClient) Authenticate(token string) (string, error) {
	if token == "" {
		return "", identity.ErrNoIdentity
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		c.logger.Debug("Rejected bearer token", "error", err)
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (c *JWTClient) CurrentUserID(ctx context.Context) (string, error) {
	id, ok := identity.UserFromContext(ctx)
	if !ok {
		return "", identity.ErrNoIdentity
	}
	return id, nil
}
