package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker-api/internal/container"
	handlers "github.com/oksasatya/expense-tracker-api/internal/interface/http"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with tight IP-based rate limits
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	tokenConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/reset-password", tokenConfirmLimiter, m.Handler.ResetPassword)
	rg.POST("/auth/verify-email", tokenConfirmLimiter, m.Handler.VerifyEmail)

	// Protected, softer per-user limits
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, container.GetLogger()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/auth/change-password", m.Handler.ChangePassword)
		auth.POST("/auth/send-verification", m.Handler.SendVerification)
	}
}
