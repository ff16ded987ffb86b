// Package auth adapts the externally issued identity (a Keycloak bearer
// token) into the subject and role the rest of the client needs. The token is
// never validated here; signature and expiry checks belong to the backend.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

var ErrNoSubject = errors.New("bearer token carries no subject")

// Session supplies the authenticated identity for every backend call. Role is
// re-derived from the token on each check rather than cached independently of
// it, so swapping the token swaps the role.
type Session interface {
	// Token returns the raw bearer credential to attach to a request.
	Token(ctx context.Context) (string, error)
	// Subject returns the stable identity (the token's sub claim).
	Subject() string
	// Role returns the coarse authorization tier for this session.
	Role() Role
}

// TokenSession derives subject and role from a raw JWT. Claims are parsed
// unverified: the client attaches the credential, the backend enforces it.
type TokenSession struct {
	raw     string
	subject string
	role    Role
}

func NewTokenSession(raw string) (*TokenSession, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("parse bearer token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrNoSubject
	}
	return &TokenSession{raw: raw, subject: sub, role: roleFromClaims(claims)}, nil
}

// NewTokenSessionFromFile reads the token from a file, for operators that
// refresh the credential out of band and point the client at it.
func NewTokenSessionFromFile(path string) (*TokenSession, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	return NewTokenSession(string(b))
}

func (s *TokenSession) Token(context.Context) (string, error) { return s.raw, nil }
func (s *TokenSession) Subject() string                       { return s.subject }
func (s *TokenSession) Role() Role                            { return s.role }

// roleFromClaims reads Keycloak realm roles. Anything without an explicit
// ADMIN realm role is a CLIENT.
func roleFromClaims(claims jwt.MapClaims) Role {
	realm, ok := claims["realm_access"].(map[string]any)
	if !ok {
		return RoleClient
	}
	roles, ok := realm["roles"].([]any)
	if !ok {
		return RoleClient
	}
	for _, r := range roles {
		if s, ok := r.(string); ok && s == string(RoleAdmin) {
			return RoleAdmin
		}
	}
	return RoleClient
}
