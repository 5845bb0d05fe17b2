package monitoring

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"choreographer/internal/domain"
)

// DemoToken is sent when no token or signing key is configured.
const DemoToken = "mock.jwt.token.for.demo"

const serviceTokenTTL = 15 * time.Minute

// TokenSource supplies the bearer token for bank API calls.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken always returns the same token.
type StaticToken string

func (s StaticToken) Token() (string, error) { return string(s), nil }

// ServiceTokenSource mints short-lived HS256 tokens for the monitoring agent
// and reuses each until it is close to expiry.
type ServiceTokenSource struct {
	key []byte
	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewServiceTokenSource signs with key.
func NewServiceTokenSource(key string) *ServiceTokenSource {
	return &ServiceTokenSource{key: []byte(key), now: time.Now}
}

func (s *ServiceTokenSource) Token() (string, error) {
	if len(s.key) == 0 {
		return "", errors.New("signing key is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(time.Minute).Before(s.expires) {
		return s.token, nil
	}

	expires := now.Add(serviceTokenTTL)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   string(domain.AgentMonitoring),
		Issuer:    "consent-choreographer",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString(s.key)
	if err != nil {
		return "", err
	}
	s.token, s.expires = signed, expires
	return signed, nil
}

// NewTokenSource prefers a configured static token, then a signing key, then
// the demo token.
func NewTokenSource(static, signingKey string) TokenSource {
	switch {
	case static != "":
		return StaticToken(static)
	case signingKey != "":
		return NewServiceTokenSource(signingKey)
	default:
		return StaticToken(DemoToken)
	}
}
