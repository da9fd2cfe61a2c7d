package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	FundsSvc       ports.FundsService
	UserSvc        ports.UserService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	userHandler := NewUserHandler(deps.UserSvc)
	walletHandler := NewWalletHandler(deps.FundsSvc)
	fundsHandler := NewFundsHandler(deps.FundsSvc)

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)

		users.GET("/:id/wallet", walletHandler.GetWallet)
		users.GET("/:id/wallet/transactions", walletHandler.ListTransactions)
		users.POST("/:id/wallet/deposit", fundsHandler.Deposit)
		users.POST("/:id/wallet/withdraw", fundsHandler.Withdraw)
	}

	return r
}
