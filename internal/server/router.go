// Package server assembles the FaithLedger web application: services,
// handlers, middleware and routes.
package server

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"faithledger/internal/config"
	apperrors "faithledger/internal/errors"
	"faithledger/internal/handlers"
	"faithledger/internal/mailer"
	"faithledger/internal/middleware"
	"faithledger/internal/services"
	"faithledger/internal/validator"
	"faithledger/web"
)

// NewRouter wires the services over db and returns the router serving every
// page, the picker endpoints, static assets and the API docs.
func NewRouter(cfg *config.Config, db *gorm.DB, mail mailer.Sender) (*gin.Engine, error) {
	validator.Register()

	renderer, err := web.NewRenderer(cfg.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	// Initialize services
	userService := services.NewUserService(db)
	resetService := services.NewPasswordResetService(userService, mail, cfg.SecretKey, cfg.PasswordResetTimeout)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	reportService := services.NewReportService(db, cfg.OfferingCategory)

	// Initialize handlers
	view := handlers.NewView(cfg.ChurchName)
	sessions := middleware.NewSessions(cfg.SecretKey, cfg.SessionTTL, cfg.Env == "production")
	authHandler := handlers.NewAuthHandler(view, sessions, userService, resetService, cfg.BaseURL)
	dashboardHandler := handlers.NewDashboardHandler(view, reportService, cfg.OfferingCategory)
	transactionHandler := handlers.NewTransactionHandler(view, transactionService, categoryService)
	categoryHandler := handlers.NewCategoryHandler(view, categoryService)
	calendarHandler := handlers.NewCalendarHandler(view, reportService)
	reportHandler := handlers.NewReportHandler(view, reportService, cfg.CurrencySymbol)

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler(view.Page))
	router.Use(middleware.Recovery())

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrNotFound, "Page not found"))
	})

	router.StaticFS("/static", http.FS(static))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", handlers.Health)

	// Public routes
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/register", authHandler.RegisterPage)
	router.POST("/register", authHandler.Register)
	router.GET("/logout", authHandler.Logout)
	router.POST("/logout", authHandler.Logout)
	router.GET("/forgot-password", authHandler.ForgotPasswordPage)
	router.POST("/forgot-password", authHandler.ForgotPassword)
	router.GET("/reset-password/:uid/:token", authHandler.ResetPasswordPage)
	router.POST("/reset-password/:uid/:token", authHandler.ResetPassword)

	// Protected routes
	protected := router.Group("/")
	protected.Use(sessions.RequireLogin(userService))

	protected.GET("", dashboardHandler.Dashboard)
	protected.GET("/analytics", dashboardHandler.Analytics)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.GET("/add", transactionHandler.AddPage)
	transactions.POST("/add", transactionHandler.Add)
	transactions.GET("/:id/edit", transactionHandler.EditPage)
	transactions.POST("/:id/edit", transactionHandler.Edit)
	transactions.GET("/:id/delete", transactionHandler.DeletePage)
	transactions.POST("/:id/delete", transactionHandler.Delete)

	ajax := protected.Group("/ajax")
	ajax.GET("/categories", categoryHandler.ActiveCategories)
	ajax.GET("/subcategories", categoryHandler.ActiveSubCategories)

	protected.GET("/calendar", calendarHandler.Calendar)
	protected.GET("/calendar/:year/:month/:day", calendarHandler.Day)
	protected.GET("/reports", reportHandler.Reports)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/add", categoryHandler.AddPage)
	categories.POST("/add", categoryHandler.Add)
	categories.GET("/:id/edit", categoryHandler.EditPage)
	categories.POST("/:id/edit", categoryHandler.Edit)
	categories.POST("/:id/toggle", categoryHandler.Toggle)
	categories.POST("/:id/delete", categoryHandler.Delete)
	categories.GET("/sub/add", categoryHandler.SubCategoryAddPage)
	categories.POST("/sub/add", categoryHandler.SubCategoryAdd)
	categories.GET("/sub/:id/edit", categoryHandler.SubCategoryEditPage)
	categories.POST("/sub/:id/edit", categoryHandler.SubCategoryEdit)
	categories.POST("/sub/:id/delete", categoryHandler.SubCategoryDelete)

	return router, nil
}
