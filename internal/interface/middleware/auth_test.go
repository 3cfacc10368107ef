package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

func newAuthRouter(jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(jwt, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"email":   c.GetString(CtxUserEmailKey),
		})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthValidToken(t *testing.T) {
	jwt := helpers.NewJWTManager("testsecret", time.Hour)
	r := newAuthRouter(jwt)

	token, _, err := jwt.GenerateSessionToken("user-42", "u@example.com")
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
	assert.Contains(t, w.Body.String(), "u@example.com")
}

func TestAuthMissingHeader(t *testing.T) {
	r := newAuthRouter(helpers.NewJWTManager("testsecret", time.Hour))
	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	jwt := helpers.NewJWTManager("testsecret", time.Hour)
	r := newAuthRouter(jwt)
	token, _, err := jwt.GenerateSessionToken("user-42", "u@example.com")
	require.NoError(t, err)

	for _, header := range []string{
		token,             // no scheme
		"Basic " + token,  // wrong scheme
		"Bearer",          // scheme without token
		"Bearer ",         // empty token
		"Bearer garbage",  // not a JWT
	} {
		w := doGet(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthExpiredToken(t *testing.T) {
	expired := helpers.NewJWTManager("testsecret", -time.Minute)
	token, _, err := expired.GenerateSessionToken("user-42", "u@example.com")
	require.NoError(t, err)

	r := newAuthRouter(helpers.NewJWTManager("testsecret", time.Hour))
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	other := helpers.NewJWTManager("othersecret", time.Hour)
	token, _, err := other.GenerateSessionToken("user-42", "u@example.com")
	require.NoError(t, err)

	r := newAuthRouter(helpers.NewJWTManager("testsecret", time.Hour))
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
