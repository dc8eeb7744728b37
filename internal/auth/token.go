package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTTL is the fixed validity window of issued tokens.
	TokenTTL = 7 * 24 * time.Hour

	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
)

// ErrInvalidToken is returned by Verify for any token that does not resolve
// to an account: malformed, expired, bad signature, wrong issuer or audience.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies signed session claims. Tokens are HS256
// JWTs whose subject is the account id; nothing is stored server-side, so
// there is no revocation list.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a TokenManager signing with the given secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue signs a token bound to the given account id.
func (m *TokenManager) Issue(accountID uint) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("signing secret not configured")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(accountID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify resolves a token back to its account id. Every failure collapses
// into ErrInvalidToken; callers degrade to anonymous, they never branch on
// the failure kind.
func (m *TokenManager) Verify(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	accountID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || accountID == 0 {
		return 0, ErrInvalidToken
	}
	return uint(accountID), nil
}
