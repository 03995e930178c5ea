package auth

import (
	"context"
	"errors"
	"strings"

	"memberhub_backend/internal/membership"
	"memberhub_backend/internal/roles"
	"memberhub_backend/pkg/apperrors"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Roles   roles.Set `json:"roles"`
	IsAdmin bool      `json:"is_admin"`
}

func (i *Identity) Can(p roles.Permission) bool {
	if i == nil {
		return false
	}
	return roles.Can(i.Roles, i.IsAdmin, p)
}

// IdentityLookup loads the current roles for a user so that grants made
// after the token was issued apply immediately.
type IdentityLookup func(ctx context.Context, userID string) (*Identity, error)

// SessionService turns a bearer token into an Identity.
type SessionService struct {
	tokens *TokenService
	lookup IdentityLookup
}

// NewSessionService wires the token verifier. lookup may be nil, in which
// case identities come from token claims alone.
func NewSessionService(tokens *TokenService, lookup IdentityLookup) *SessionService {
	return &SessionService{tokens: tokens, lookup: lookup}
}

func (s *SessionService) Tokens() *TokenService {
	return s.tokens
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Authenticate verifies the token. A user deleted after the token was issued
// still authenticates from its claims so that profile lookups can answer 404.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.New(apperrors.CodeTokenExpired, "auth", "Token expired", apperrors.ErrInvalidToken.HTTPCode)
		}
		return nil, apperrors.ErrInvalidToken
	}

	id := &Identity{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Roles:   roles.FromStrings(claims.Roles),
		IsAdmin: claims.IsAdmin,
	}
	if s.lookup == nil {
		return id, nil
	}

	fresh, err := s.lookup(ctx, claims.UserID)
	switch {
	case err == nil && fresh != nil:
		return fresh, nil
	case err != nil && membership.IsNotFound(err):
		return id, nil
	case err != nil:
		return nil, err
	}
	return id, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity set by the auth middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
