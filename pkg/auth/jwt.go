package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const (
	userKey ctxKey = iota + 1
	roleKey
)

// Identity is what a verified token asserts about the caller.
type Identity struct {
	UserID string
	Role   string // "patient", "doctor", or "guest"
}

// WithIdentity adds the caller's identity to the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, userKey, id.UserID)
	return context.WithValue(ctx, roleKey, id.Role)
}

// UserID extracts the user ID from the context, defaults to "anon"
func UserID(ctx context.Context) string {
	v := ctx.Value(userKey)
	if v == nil {
		return "anon"
	}
	return v.(string)
}

// Role extracts the caller's role from the context, defaults to "guest"
func Role(ctx context.Context) string {
	v := ctx.Value(roleKey)
	if v == nil {
		return "guest"
	}
	return v.(string)
}

// JWT wraps a signing secret for issuing/verifying tokens
type JWT struct{ secret []byte }

// New creates a new JWT signer/verifier.
func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Verify checks a token and returns the identity it asserts
func (j *JWT) Verify(tok string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return Identity{}, errors.New("no sub")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = "guest"
	}
	return Identity{UserID: uid, Role: role}, nil
}

// Sign creates a token for the identity with the given TTL
func (j *JWT) Sign(id Identity, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("empty uid")
	}
	claims := jwt.MapClaims{
		"sub":  id.UserID,
		"role": id.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(j.secret)
}
