package server

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "taskrunner-agent"

// Access scopes carried by issued tokens. The API key always grants
// ScopeRunner; tokens can be scoped down for read-only automation.
const (
	// ScopeRunner may trigger task runs and read everything.
	ScopeRunner = "runner"
	// ScopeViewer may read catalog, status and logs but not run tasks.
	ScopeViewer = "viewer"
)

// AgentClaims is the claim set of tokens issued by this agent
type AgentClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// AuthService validates the shared API key and issues and parses
// scoped access tokens.
type AuthService struct {
	apiKey []byte
	secret []byte
}

func NewAuthService(apiKey, jwtSecret string) *AuthService {
	return &AuthService{
		apiKey: []byte(apiKey),
		secret: []byte(jwtSecret),
	}
}

// CheckAPIKey reports whether key matches the configured API key.
// Comparison is constant time; an empty configured key never matches.
func (a *AuthService) CheckAPIKey(key string) bool {
	if len(a.apiKey) == 0 || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), a.apiKey) == 1
}

// IssueToken creates a signed token with the given scope and lifetime
func (a *AuthService) IssueToken(scope string, ttl time.Duration) (string, error) {
	if scope != ScopeRunner && scope != ScopeViewer {
		return "", fmt.Errorf("unknown token scope: %s", scope)
	}

	now := time.Now()
	claims := AgentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates a token issued by IssueToken and returns its
// claims. Only HS256 tokens carrying this agent's issuer are accepted.
func (a *AuthService) ParseToken(raw string) (*AgentClaims, error) {
	claims := &AgentClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// bearerToken returns the credential from the Authorization header.
// Only the Bearer scheme is accepted: this agent serves automation
// clients, and credentials in query strings end up in access logs.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
