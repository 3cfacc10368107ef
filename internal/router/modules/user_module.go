package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker-api/internal/container"
	handlers "github.com/oksasatya/expense-tracker-api/internal/interface/http"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

// UserModule wires the profile endpoints.
// Protected: GET /api/users/profile, PUT /api/users/profile,
// GET /api/users/stats, DELETE /api/users/account

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, container.GetLogger()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/users/profile", m.Handler.GetProfile)
		auth.PUT("/users/profile", m.Handler.UpdateProfile)
		auth.GET("/users/stats", m.Handler.Stats)
		auth.DELETE("/users/account", m.Handler.DeleteAccount)
	}
}
