package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

// Verifier checks HS256 bearer tokens attached to session record posts.
type Verifier struct {
	key    []byte
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier returns a Verifier for key, or nil when key is empty. A nil
// Verifier accepts unsigned posts.
func NewVerifier(key string) *Verifier {
	if key == "" {
		return nil
	}
	return &Verifier{key: []byte(key), leeway: 5 * time.Second, now: time.Now}
}

// Verify validates the Authorization header value. When runID is not empty
// the token id must match it.
func (v *Verifier) Verify(authorization, runID string) error {
	if v == nil {
		return nil
	}
	raw, ok := strings.CutPrefix(strings.TrimSpace(authorization), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return fmt.Errorf("missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims,
		func(*jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionrecord.TokenIssuer),
		jwt.WithAudience(sessionrecord.TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if runID != "" && claims.ID != runID {
		return fmt.Errorf("token id %q does not match run %q", claims.ID, runID)
	}
	return nil
}
