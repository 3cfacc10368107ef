package router

import (
	"github.com/oksasatya/expense-tracker-api/internal/application"
	"github.com/oksasatya/expense-tracker-api/internal/container"
	pginfra "github.com/oksasatya/expense-tracker-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/expense-tracker-api/internal/interface/http"
	"github.com/oksasatya/expense-tracker-api/internal/router/modules"
)

// InitModules constructs the feature modules from the container
// singletons and registers them. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	jwt := container.GetJWT()

	userRepo := pginfra.NewUserRepository(pool)
	txnRepo := pginfra.NewTransactionRepository(pool)

	userSvc := application.NewUserService(
		userRepo,
		txnRepo,
		jwt,
		logger,
		cfg.ResetTokenTTL,
		cfg.VerifyTokenTTL,
	)
	txnSvc := application.NewTransactionService(
		txnRepo,
		logger,
		container.GetES(),
		cfg.ESTransactionsIndex,
	)

	authHandler := handlers.NewAuthHandler(userSvc, logger, cfg, container.GetRabbitPub())
	userHandler := handlers.NewUserHandler(userSvc, logger)
	txnHandler := handlers.NewTransactionHandler(txnSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewUserModule(userHandler, jwt))
	r.Add(modules.NewTransactionModule(txnHandler, jwt))
	r.Add(modules.NewDebugModule())
}
