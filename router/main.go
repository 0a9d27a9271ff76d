package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/g-rown/UAct-BackEnd/database"
	"github.com/g-rown/UAct-BackEnd/handlers"
	accreditation_handlers "github.com/g-rown/UAct-BackEnd/handlers/accreditation"
	admin_handlers "github.com/g-rown/UAct-BackEnd/handlers/admin"
	application_handlers "github.com/g-rown/UAct-BackEnd/handlers/application"
	auth_handlers "github.com/g-rown/UAct-BackEnd/handlers/auth"
	notification_handlers "github.com/g-rown/UAct-BackEnd/handlers/notification"
	program_handlers "github.com/g-rown/UAct-BackEnd/handlers/program"
	student_handlers "github.com/g-rown/UAct-BackEnd/handlers/student"
	"github.com/g-rown/UAct-BackEnd/utils"
	"github.com/g-rown/UAct-BackEnd/utils/auth"
	"github.com/g-rown/UAct-BackEnd/utils/cache"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage, reports *database.ReportStore) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "uact-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute-force protection; the API still works without it
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	programHandler := program_handlers.NewProgramHandler(db)
	applicationHandler := application_handlers.NewApplicationHandler(db)
	accreditationHandler := accreditation_handlers.NewAccreditationHandler(db)
	studentHandler := student_handlers.NewStudentHandler(db)
	notificationHandler := notification_handlers.NewNotificationHandler(db)
	adminHandler := admin_handlers.NewAdminHandler(db, reports)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Program routes
	programs := api.Group("/programs", authMiddleware.Required())
	programs.Get("/", programHandler.ListPrograms)
	programs.Get("/:id", programHandler.GetProgram)
	programs.Post("/", authMiddleware.RequireAdmin(), programHandler.CreateProgram)
	programs.Put("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "program_update", "programs"), programHandler.UpdateProgram)
	programs.Delete("/:id", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "program_delete", "programs"), programHandler.DeleteProgram)

	// Application routes
	applications := api.Group("/applications", authMiddleware.Required())
	applications.Post("/", authMiddleware.RequireStudent(), applicationHandler.SubmitApplication)
	applications.Get("/me", authMiddleware.RequireStudent(), applicationHandler.ListMyApplications)
	applications.Get("/", authMiddleware.RequireAdmin(), applicationHandler.ListApplications)
	applications.Get("/:id", applicationHandler.GetApplication)
	applications.Post("/:id/decision", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "application_decide", "applications"), applicationHandler.DecideApplication)

	// Service log / accreditation routes
	serviceLogs := api.Group("/service-logs", authMiddleware.Required())
	serviceLogs.Get("/", authMiddleware.RequireAdmin(), accreditationHandler.ListServiceLogs)
	serviceLogs.Get("/:id", accreditationHandler.GetServiceLog)
	serviceLogs.Post("/:id/approve", authMiddleware.RequireAdmin(),
		middleware.AdminAuditLog(db, "service_log_approve", "service_logs"), accreditationHandler.ApproveServiceLog)

	// Student routes
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/me", authMiddleware.RequireStudent(), studentHandler.GetMyProgress)
	students.Get("/", authMiddleware.RequireAdmin(), studentHandler.ListStudents)
	students.Get("/:id", authMiddleware.RequireAdmin(), studentHandler.GetStudent)

	// Notification routes (protected)
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware.RequireAdmin())
	adminGroup.Get("/dashboard", adminHandler.GetDashboard)
	adminGroup.Get("/settings", adminHandler.ListSettings)
	adminGroup.Put("/settings", adminHandler.UpdateSetting)
	adminGroup.Get("/audit-log", adminHandler.ListAuditLog)
	adminGroup.Get("/cron-logs", adminHandler.ListCronJobLogs)
}
