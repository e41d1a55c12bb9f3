package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "travelhub/api/swagger" // swagger docs
	"travelhub/internal/cache"
	"travelhub/internal/database"
	"travelhub/internal/directory"
	"travelhub/internal/handler"
	"travelhub/internal/mailer"
	"travelhub/internal/middleware"
	"travelhub/internal/notifier"
	"travelhub/internal/repository"
	"travelhub/internal/service"
	"travelhub/internal/websocket"
)

// @title           Travel Request API
// @version         1.0
// @description     API for submitting travel requests and driving them through manager, budget and verification approvals.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Counts cache (degrades to direct queries when REDIS_ADDR is unset)
	cache.Init(os.Getenv("REDIS_ADDR"))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	dir := directory.New(db)
	mail := mailer.NewFromEnv()
	dispatcher := notifier.New(dir, notificationRepo, wsHub, mail, notifier.NewCatalog())

	userService := service.NewUserService(db)
	requestService := service.NewRequestService(requestRepo, approvalRepo, auditRepo, txManager, dir, dispatcher)
	approvalService := service.NewApprovalService(requestRepo, approvalRepo, auditRepo, txManager, dispatcher)
	budgetService := service.NewBudgetService(requestRepo, approvalRepo, auditRepo, txManager, dir, dispatcher)
	auditService := service.NewAuditService(db)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService)
	approvalHandler := handler.NewApprovalHandler(approvalService, budgetService, requestService)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	approvalHandler.RegisterRoutes(router.Group(""))
	notificationHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
