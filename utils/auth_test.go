package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
}

func TestGenerateAndParseToken(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token, err := GenerateToken("user-1", "ana@example.com", "Ana")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)

	ConfigureJWT("another-secret", time.Hour)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":  expiredToken,
		"alg none": noneToken,
		"garbage":  "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token)
			assert.Error(t, err)
		})
	}
}

func TestGenerateToken_NoSecret(t *testing.T) {
	ConfigureJWT("", 0)
	defer ConfigureJWT("test-secret", time.Hour)

	_, err := GenerateToken("user-1", "ana@example.com", "Ana")
	assert.EqualError(t, err, "JWT_SECRET not set")
}

func TestAuthMiddleware(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)
	token, err := GenerateToken("user-1", "ana@example.com", "Ana")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id, email, name, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": email, "name": name})
	})

	tests := []struct {
		name       string
		url        string
		header     http.Header
		wantStatus int
	}{
		{name: "no header", url: "/me", wantStatus: http.StatusUnauthorized},
		{name: "bearer token", url: "/me", header: http.Header{"Authorization": {"Bearer " + token}}, wantStatus: http.StatusOK},
		{name: "bare token", url: "/me", header: http.Header{"Authorization": {token}}, wantStatus: http.StatusOK},
		{name: "bad token", url: "/me", header: http.Header{"Authorization": {"Bearer nope"}}, wantStatus: http.StatusUnauthorized},
		{name: "query token on plain request", url: "/me?token=" + token, wantStatus: http.StatusUnauthorized},
		{
			name:       "query token on websocket handshake",
			url:        "/me?token=" + token,
			header:     http.Header{"Connection": {"Upgrade"}, "Upgrade": {"websocket"}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			for k, v := range tt.header {
				req.Header[k] = v
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":"user-1","email":"ana@example.com","name":"Ana"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}
