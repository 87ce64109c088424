package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/obrafin/backend/internal/infrastructure/config"
	"github.com/obrafin/backend/internal/infrastructure/logger"
	"github.com/obrafin/backend/internal/interfaces/http/handler"
	"github.com/obrafin/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups every handler wired into the router
type Handlers struct {
	System     *handler.SystemHandler
	Expense    *handler.ExpenseHandler
	Income     *handler.IncomeHandler
	Contract   *handler.ContractHandler
	Cashbox    *handler.CashboxHandler
	Accounting *handler.AccountingHandler
	Alert      *handler.AlertHandler
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg *config.Config, log *zap.Logger, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r.Use(middleware.RequestID())
	r.Use(logger.Recovery(log))
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID", "X-User-ID", "X-User-Role", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)

	api := r.Group("/api/v1")
	api.Use(middleware.Actor())
	{
		expenses := api.Group("/expenses")
		{
			expenses.POST("", h.Expense.Create)
			expenses.GET("", h.Expense.List)
			expenses.GET("/:id", h.Expense.Get)
			expenses.POST("/:id/transition", h.Expense.Transition)
			expenses.POST("/:id/reject", h.Expense.Reject)
		}

		incomes := api.Group("/incomes")
		{
			incomes.POST("", h.Income.Create)
			incomes.GET("/:id", h.Income.Get)
			incomes.POST("/:id/validate", h.Income.Validate)
			incomes.POST("/:id/annul", h.Income.Annul)
		}
		api.GET("/works/:id/incomes", h.Income.ListByWork)

		contracts := api.Group("/contracts")
		{
			contracts.POST("", h.Contract.Create)
			contracts.GET("", h.Contract.List)
			contracts.GET("/:id", h.Contract.Get)
			contracts.PUT("/:id/executed", h.Contract.UpdateExecuted)
			contracts.POST("/:id/unblock", h.Contract.Unblock)
		}

		cashboxes := api.Group("/cashboxes")
		{
			cashboxes.POST("", h.Cashbox.Open)
			cashboxes.GET("", h.Cashbox.ListMine)
			cashboxes.GET("/:id", h.Cashbox.Get)
			cashboxes.POST("/:id/movements", h.Cashbox.RegisterMovement)
			cashboxes.GET("/:id/movements", h.Cashbox.ListMovements)
			cashboxes.POST("/:id/refill", h.Cashbox.Refill)
			cashboxes.POST("/:id/close", h.Cashbox.Close)
			cashboxes.POST("/:id/reopen", h.Cashbox.Reopen)
			cashboxes.POST("/:id/adjust", h.Cashbox.Adjust)
			cashboxes.POST("/:id/difference/approve", h.Cashbox.ApproveDifference)
			cashboxes.POST("/:id/difference/reject", h.Cashbox.RejectDifference)
		}

		accounting := api.Group("/accounting")
		{
			accounting.GET("/records", h.Accounting.ListPeriod)
			accounting.GET("/months/status", h.Accounting.PeriodStatus)
			accounting.POST("/months/close", h.Accounting.CloseMonth)
			accounting.POST("/months/reopen", h.Accounting.ReopenMonth)
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("", h.Alert.ListUnread)
			alerts.POST("/:id/read", h.Alert.MarkRead)
		}
	}

	return r
}
