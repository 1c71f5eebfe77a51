package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupTransactionRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.RefreshToken)
		auth.GET("/verify-email", c.UserHandler.VerifyEmail)
		auth.POST("/verify-email/resend", c.UserHandler.ResendVerificationEmail)
		auth.POST("/otp/request", c.UserHandler.RequestPhoneOTP)
		auth.POST("/otp/verify", c.UserHandler.VerifyPhoneOTP)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.GetProfile)
		users.PUT("/me", c.UserHandler.UpdateProfile)
		users.PUT("/me/password", c.UserHandler.ChangePassword)
	}

	admin := users.Group("")
	admin.Use(middleware.RequirePolicy(middleware.ActionManageUsers))
	{
		admin.GET("", c.UserHandler.ListUsers)
		admin.GET("/:id", c.UserHandler.GetUser)
		admin.PUT("/:id/role", c.UserHandler.UpdateRole)
		admin.PUT("/:id/status", c.UserHandler.UpdateStatus)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/popular", c.BookHandler.PopularBooks)
		books.GET("/:id", c.BookHandler.GetBookDetail)
	}

	manage := books.Group("")
	manage.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequirePolicy(middleware.ActionManageBooks),
	)
	{
		manage.POST("", c.BookHandler.CreateBook)
		manage.POST("/import", c.BookHandler.ImportBooks)
		manage.GET("/export", c.BookHandler.ExportBooks)
		manage.PUT("/:id", c.BookHandler.UpdateBook)
		manage.DELETE("/:id", c.BookHandler.DeleteBook)
		manage.POST("/:id/cover", c.BookHandler.UploadCover)
		manage.DELETE("/:id/cover", c.BookHandler.RemoveCover)
	}
}

// ========================================
// TRANSACTION ROUTES
// ========================================
func setupTransactionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	transactions := v1.Group("/transactions")
	transactions.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		transactions.GET("/me", c.TransactionHandler.ListMyTransactions)
		transactions.GET("/:id", c.TransactionHandler.GetTransaction)

		// Renew is self-or-admin; ownership lives in the service.
		transactions.POST("/:id/renew",
			middleware.RequirePolicy(middleware.ActionRenewLoan),
			c.TransactionHandler.Renew)

		transactions.GET("",
			middleware.RequirePolicy(middleware.ActionViewAllLoans),
			c.TransactionHandler.ListTransactions)
		transactions.POST("/issue",
			middleware.RequirePolicy(middleware.ActionIssueLoan),
			c.TransactionHandler.Issue)
		transactions.POST("/:id/return",
			middleware.RequirePolicy(middleware.ActionReturnLoan),
			c.TransactionHandler.Return)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.RequirePolicy(middleware.ActionViewDashboard),
	)
	{
		admin.GET("/dashboard", c.DashboardHandler.GetDashboard)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := gin.H{
			"status":   "ok",
			"version":  c.Config.App.Version,
			"database": "ok",
			"cache":    "ok",
		}
		healthy := true

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status["database"] = "unreachable"
			healthy = false
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			status["cache"] = "unreachable"
			healthy = false
		}

		if !healthy {
			status["status"] = "degraded"
			ctx.JSON(http.StatusServiceUnavailable, status)
			return
		}
		response.Success(ctx, http.StatusOK, "healthy", status)
	}
}
