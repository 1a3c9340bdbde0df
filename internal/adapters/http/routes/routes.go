package routes

import (
	"helacredit/internal/adapters/http/handlers"
	"helacredit/internal/adapters/http/middleware"
	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/config"
	"helacredit/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	countyRepo := repositories.NewCountyRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	disbursementRepo := repositories.NewDisbursementRepository(db)
	uow := repositories.NewGormUoW(db)

	// Initialize services
	gateway := services.NewSimulatedMpesaGateway()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	loanService := services.NewLoanService(loanRepo, paymentRepo, disbursementRepo, countyRepo, uow, gateway)
	dashboardService := services.NewDashboardService(userRepo, loanRepo, paymentRepo, disbursementRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	loanHandler := handlers.NewLoanHandler(loanService)
	masterHandler := handlers.NewMasterHandler(countyRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, stricter rate limit)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Master data routes (public, cached)
	countyRoutes := apiV1.Group("/counties")
	countyRoutes.Use(middleware.MasterDataCache())
	countyRoutes.Get("/", masterHandler.ListCounties)
	countyRoutes.Get("/:code", masterHandler.GetCounty)

	// Profile routes (authenticated)
	profileRoutes := apiV1.Group("/users/me")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", userHandler.GetProfile)
	profileRoutes.Put("/", userHandler.UpdateProfile)
	profileRoutes.Put("/password", userHandler.ChangePassword)

	// Loan application routes (authenticated applicants)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler)

	// Dashboard routes (authenticated)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	dashboardRoutes.Get("/", dashboardHandler.UserDashboard)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, loanHandler, userHandler, dashboardHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupLoanRoutes configures applicant-facing workflow routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.ListMine)
	router.Post("/calculate", handler.Calculate)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Post("/:id/submit", handler.Submit)
	router.Get("/:id/payments", handler.Payments)
	router.Get("/:id/disbursement", handler.Disbursement)

	// Money movement uses the strictest limiter
	router.Post("/:id/service-fee", middleware.StrictRateLimiter(), handler.PayServiceFee)
	router.Post("/:id/processing-fee", middleware.StrictRateLimiter(), handler.PayProcessingFee)
}

// setupAdminRoutes configures back office routes
func setupAdminRoutes(
	router fiber.Router,
	loanHandler *handlers.LoanHandler,
	userHandler *handlers.UserHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// Portfolio reporting
	router.Get("/dashboard", dashboardHandler.AdminDashboard)

	// Application review
	router.Get("/loans", loanHandler.List)
	router.Get("/loans/review-queue", loanHandler.ReviewQueue)
	router.Get("/loans/:id", loanHandler.Get)
	router.Post("/loans/:id/approve", loanHandler.Approve)
	router.Post("/loans/:id/reject", loanHandler.Reject)
	router.Post("/loans/:id/disburse", middleware.StrictRateLimiter(), loanHandler.Disburse)
	router.Post("/loans/:id/complete", loanHandler.Complete)

	// Ledger reconciliation
	router.Post("/payments/:reference/confirm", middleware.StrictRateLimiter(), loanHandler.ConfirmPayment)

	// User management
	router.Get("/users", userHandler.ListUsers)
	router.Put("/users/:id", userHandler.UpdateUser)
	router.Delete("/users/:id", userHandler.DeleteUser)
}
