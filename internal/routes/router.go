// Package routes wires the middleware chain and registers every route.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adigold/splitbook/internal/auth"
	"github.com/adigold/splitbook/internal/handlers"
	"github.com/adigold/splitbook/internal/middleware"
	"github.com/adigold/splitbook/internal/service"
	"github.com/adigold/splitbook/internal/storage"
)

// Deps carries everything the router needs.
type Deps struct {
	Store      storage.Store
	JWTManager *auth.JWTManager
	Limiter    *middleware.Limiter

	Auth      *service.AuthService
	Ledger    *service.LedgerService
	Requests  *service.RequestService
	Expenses  *service.ExpenseService
	Recurring *service.RecurringService
}

// Setup builds the full engine: metrics, logging and rate limiting on
// everything, JWT auth on the API group.
func Setup(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.RateLimit(deps.Limiter))

	r.GET("/healthz", func(c *gin.Context) {
		if err := deps.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Auth)
	ledgerHandler := handlers.NewLedgerHandler(deps.Ledger)
	requestHandler := handlers.NewRequestHandler(deps.Requests)
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses)
	recurringHandler := handlers.NewRecurringHandler(deps.Recurring)

	api := r.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Everything else requires a valid token
	authed := api.Group("/")
	authed.Use(middleware.RequireAuth(deps.JWTManager))
	{
		authed.GET("/me", authHandler.Me)

		authed.POST("/accounts", ledgerHandler.CreateAccount)
		authed.GET("/accounts", ledgerHandler.ListAccounts)
		authed.GET("/accounts/:id/transactions", ledgerHandler.ListTransactions)
		authed.POST("/categories", ledgerHandler.CreateCategory)
		authed.GET("/categories", ledgerHandler.ListCategories)
		authed.GET("/summary", ledgerHandler.Summary)

		authed.POST("/transaction-requests", requestHandler.Create)
		authed.POST("/transaction-requests/:id/approve", requestHandler.Approve)
		authed.POST("/transaction-requests/:id/reject", requestHandler.Reject)

		authed.POST("/shared-expenses", expenseHandler.Create)
		authed.GET("/shared-expenses", expenseHandler.List)
		authed.DELETE("/shared-expenses/:id", expenseHandler.Cancel)
		authed.POST("/participants/:participantId/pay", expenseHandler.MarkPaid)

		authed.POST("/recurring-templates", recurringHandler.Create)
		authed.GET("/recurring-templates", recurringHandler.List)
		authed.POST("/recurring-templates/apply", recurringHandler.ApplyDue)
	}

	return r
}
