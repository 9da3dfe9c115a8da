package telemetry

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/aurora-runner/internal/services/shared/sessionrecord"
)

// TokenTTL bounds how long a delivery token stays valid.
const TokenTTL = time.Minute

// Signer issues HS256 bearer tokens for record deliveries.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner returns a Signer for key, or nil when key is empty.
func NewSigner(key string) *Signer {
	if key == "" {
		return nil
	}
	return &Signer{key: []byte(key), now: time.Now}
}

// Sign returns a token whose jti is runID.
func (s *Signer) Sign(runID string) (string, error) {
	if s == nil || len(s.key) == 0 {
		return "", fmt.Errorf("signing key is required")
	}
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionrecord.TokenIssuer,
		Audience:  jwt.ClaimStrings{sessionrecord.TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        runID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
