package main

import (
	"fmt"
	"net/http"
	"os"

	"billetera/internal/config"
	"billetera/internal/database"
	"billetera/internal/handlers"
	"billetera/internal/logger"
	"billetera/internal/middleware"
	"billetera/internal/prices"
	"billetera/internal/rates"
	"billetera/internal/realtime"
	"billetera/internal/services"
	"billetera/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "billetera/internal/docs" // Import swagger docs
)

// @title           Billetera API
// @version         1.0
// @description     Billetera is a personal finance API for the Argentine bimonetary economy: an ARS/USD ledger, recurring transactions, budgets, and multi-currency patrimony valuation at the blue-dollar rate.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Price cache backend: Redis when configured, in-memory otherwise
	var priceCache prices.Cache
	if appConfig.RedisAddr != "" {
		priceCache = prices.NewRedisCache(redis.NewClient(&redis.Options{Addr: appConfig.RedisAddr}))
		log.Infof("Using Redis price cache at %s", appConfig.RedisAddr)
	} else {
		priceCache = prices.NewMemoryCache()
	}

	httpClient := &http.Client{Timeout: appConfig.HTTPTimeout}

	// Exchange rate and market price feeds
	rateService := rates.NewService(
		dbManager.DB(),
		rates.NewClient(httpClient, appConfig.DolarAPIURL),
		appConfig.RateTTL,
	)
	cryptoProvider := prices.NewCryptoProvider(httpClient, appConfig.CoinGeckoURL, priceCache, appConfig.CryptoPriceTTL)
	cedearProvider := prices.NewCedearProvider(httpClient, appConfig.YahooChartURL, priceCache, appConfig.CedearPriceTTL)

	// Change-event hub for websocket subscribers
	hub := realtime.NewHub()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db, rateService, hub)
	recurringService := services.NewRecurringService(db, rateService, hub)
	assetService := services.NewAssetService(db, rateService, cryptoProvider, cedearProvider, hub)
	budgetService := services.NewBudgetService(db, rateService, hub)
	shortcutService := services.NewShortcutService(db, hub)
	settingsService := services.NewSettingsService(db)
	exportService := services.NewExportService(db, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	assetHandler := handlers.NewAssetHandler(assetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	shortcutHandler := handlers.NewShortcutHandler(shortcutService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	exportHandler := handlers.NewExportHandler(exportService)
	rateHandler := handlers.NewRateHandler(rateService)
	eventsHandler := handlers.NewEventsHandler(hub)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Websocket endpoint authenticates via query token
	v1.GET("/events", eventsHandler.Stream)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetMonthlySummary)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Recurring definition routes
	recurring := protected.Group("/recurring")
	recurring.POST("/incomes", recurringHandler.CreateIncome)
	recurring.GET("/incomes", recurringHandler.GetIncomes)
	recurring.PUT("/incomes/:id", recurringHandler.UpdateIncome)
	recurring.DELETE("/incomes/:id", recurringHandler.DeleteIncome)
	recurring.POST("/expenses", recurringHandler.CreateExpense)
	recurring.GET("/expenses", recurringHandler.GetExpenses)
	recurring.PUT("/expenses/:id", recurringHandler.UpdateExpense)
	recurring.DELETE("/expenses/:id", recurringHandler.DeleteExpense)
	recurring.POST("/process", recurringHandler.Process)

	// Asset routes
	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/summary", assetHandler.GetSummary)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	// Shortcut routes
	shortcuts := protected.Group("/shortcuts")
	shortcuts.POST("", shortcutHandler.CreateShortcut)
	shortcuts.GET("", shortcutHandler.GetUserShortcuts)
	shortcuts.PUT("/:id", shortcutHandler.UpdateShortcut)
	shortcuts.DELETE("/:id", shortcutHandler.DeleteShortcut)

	// Settings routes
	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings", settingsHandler.UpdateSettings)

	// Backup routes
	protected.GET("/export", exportHandler.Export)
	protected.POST("/import", exportHandler.Import)

	// Exchange rate
	protected.GET("/rates/blue", rateHandler.GetRate)

	log.Infof("Starting Billetera backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
