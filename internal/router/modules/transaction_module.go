package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker-api/internal/container"
	handlers "github.com/oksasatya/expense-tracker-api/internal/interface/http"
	"github.com/oksasatya/expense-tracker-api/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

// TransactionModule wires the ledger endpoints, all protected.
// Fixed paths (summary, categories, search) are registered before the
// :id routes so gin does not treat them as ids.

type TransactionModule struct {
	Handler *handlers.TransactionHandler
	JWT     *helpers.JWTManager
}

func NewTransactionModule(h *handlers.TransactionHandler, jwt *helpers.JWTManager) *TransactionModule {
	return &TransactionModule{Handler: h, JWT: jwt}
}

func (m *TransactionModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT, container.GetLogger()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/transactions/summary", m.Handler.Summary)
		auth.GET("/transactions/categories", m.Handler.Categories)
		auth.GET("/transactions/search", m.Handler.Search)

		auth.POST("/transactions", m.Handler.Create)
		auth.GET("/transactions", m.Handler.List)
		auth.GET("/transactions/:id", m.Handler.Get)
		auth.PUT("/transactions/:id", m.Handler.Update)
		auth.DELETE("/transactions/:id", m.Handler.Delete)
	}
}
