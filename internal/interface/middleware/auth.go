package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
	"github.com/oksasatya/expense-tracker-api/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth resolves the Authorization bearer token to a principal. Session
// verification is pure computation on the signed token; no store is
// consulted. Missing, malformed, tampered and expired tokens all get the
// same generic response; the distinction goes to the debug log only.
func Auth(jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			if logger != nil {
				logger.WithError(err).Debug("session token rejected")
			}
			response.AbortError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}
