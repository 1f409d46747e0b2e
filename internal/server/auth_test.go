package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAPIKey(t *testing.T) {
	auth := NewAuthService("agent-key", "signing-secret")

	assert.True(t, auth.CheckAPIKey("agent-key"))
	assert.False(t, auth.CheckAPIKey("other-key"))
	assert.False(t, auth.CheckAPIKey(""))
}

func TestCheckAPIKeyUnconfigured(t *testing.T) {
	// An agent without an API key must not accept the empty string
	auth := NewAuthService("", "signing-secret")
	assert.False(t, auth.CheckAPIKey(""))
}

func TestIssueAndParseToken(t *testing.T) {
	auth := NewAuthService("agent-key", "signing-secret")

	token, err := auth.IssueToken(ScopeViewer, time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, ScopeViewer, claims.Scope)
	assert.Equal(t, "taskrunner-agent", claims.Issuer)
}

func TestIssueTokenRejectsUnknownScope(t *testing.T) {
	auth := NewAuthService("agent-key", "signing-secret")

	_, err := auth.IssueToken("admin", time.Hour)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	auth := NewAuthService("agent-key", "signing-secret")

	token, err := auth.IssueToken(ScopeRunner, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService("agent-key", "secret-one")
	verifier := NewAuthService("agent-key", "secret-two")

	token, err := issuer.IssueToken(ScopeRunner, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	auth := NewAuthService("agent-key", "signing-secret")

	_, err := auth.ParseToken("not.a.token")
	assert.Error(t, err)

	_, err = auth.ParseToken("")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer scheme", "Bearer my-token", "", "my-token"},
		{"padded value", "Bearer  my-token ", "", "my-token"},
		{"raw header rejected", "my-token", "", ""},
		{"basic scheme rejected", "Basic dXNlcjpwdw==", "", ""},
		{"query credential ignored", "", "?token=my-token", ""},
		{"no credential", "", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tc.query, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}

			assert.Equal(t, tc.want, bearerToken(c))
		})
	}
}
