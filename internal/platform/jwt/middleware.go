package jwtmw

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the authenticated user ID.
	ContextUserID = "userID"
	// ContextSessionID is the gin context key holding the login session of the request.
	ContextSessionID = "sessionID"
)

// Verifier resolves an access token to a user ID and its login session.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID uint, sessionID string, err error)
}

// SessionLookup resolves a live session ID to the ID of its user.
type SessionLookup func(ctx context.Context, sessionID string) (uint, error)

// SessionVerifier accepts a token only while the session in its jti is alive
// and belongs to the token's subject.
type SessionVerifier struct {
	gen    *Generator
	lookup SessionLookup
}

var _ Verifier = (*SessionVerifier)(nil)

// NewSessionVerifier creates a verifier backed by the session store.
func NewSessionVerifier(gen *Generator, lookup SessionLookup) *SessionVerifier {
	return &SessionVerifier{gen: gen, lookup: lookup}
}

// Verify checks the signature, then the session behind the token.
func (v *SessionVerifier) Verify(ctx context.Context, tokenStr string) (uint, string, error) {
	claims, err := v.gen.Parse(tokenStr)
	if err != nil {
		return 0, "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return 0, "", err
	}
	if claims.ID == "" {
		return 0, "", fmt.Errorf("%w: missing session", ErrInvalidToken)
	}
	owner, err := v.lookup(ctx, claims.ID)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if owner != userID {
		return 0, "", fmt.Errorf("%w: session belongs to user %d", ErrInvalidToken, owner)
	}
	return userID, claims.ID, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return tok, tok != ""
}

// Bearer returns a Gin middleware that authenticates API clients by their
// bearer token. Requests without the header pass through untouched so that
// cookie sessions can authenticate them; a header with a bad token is
// rejected with 401.
func Bearer(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Next()
			return
		}
		tokenStr, ok := BearerToken(auth)
		if !ok || v == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID, sessionID, err := v.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}
