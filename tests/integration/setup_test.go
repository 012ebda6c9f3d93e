package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"billetera/internal/handlers"
	"billetera/internal/logger"
	"billetera/internal/middleware"
	"billetera/internal/models"
	"billetera/internal/rates"
	"billetera/internal/realtime"
	"billetera/internal/services"
	"billetera/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// fixedFetcher serves a constant blue rate without touching the network.
type fixedFetcher struct {
	compra, venta int64
}

func (f fixedFetcher) Fetch(_ context.Context) (rates.Rate, error) {
	return rates.Rate{
		Compra: decimal.NewFromInt(f.compra),
		Venta:  decimal.NewFromInt(f.venta),
	}, nil
}

// fixedPrices is a static market price table.
type fixedPrices map[string]decimal.Decimal

func (f fixedPrices) GetPrices(_ context.Context, tickers []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		if price, ok := f[ticker]; ok {
			out[ticker] = price
		}
	}
	return out
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Transaction{},
		&models.RecurringIncome{},
		&models.RecurringExpense{},
		&models.Asset{},
		&models.Budget{},
		&models.Shortcut{},
		&models.Setting{},
		&models.RateSnapshot{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, with the rate feed pinned to venta 1000 and static market prices.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	rateService := rates.NewService(db, fixedFetcher{compra: 980, venta: 1000}, 0)
	cryptoPrices := fixedPrices{"BTC": decimal.NewFromInt(60000)}
	cedearPrices := fixedPrices{"AAPL": decimal.NewFromInt(250)}
	hub := realtime.NewHub()

	// Services
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db, rateService, hub)
	recurringService := services.NewRecurringService(db, rateService, hub)
	assetService := services.NewAssetService(db, rateService, cryptoPrices, cedearPrices, hub)
	budgetService := services.NewBudgetService(db, rateService, hub)
	shortcutService := services.NewShortcutService(db, hub)
	settingsService := services.NewSettingsService(db)
	exportService := services.NewExportService(db, hub)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	assetHandler := handlers.NewAssetHandler(assetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	shortcutHandler := handlers.NewShortcutHandler(shortcutService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	exportHandler := handlers.NewExportHandler(exportService)
	rateHandler := handlers.NewRateHandler(rateService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetMonthlySummary)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

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

	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/summary", assetHandler.GetSummary)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	shortcuts := protected.Group("/shortcuts")
	shortcuts.POST("", shortcutHandler.CreateShortcut)
	shortcuts.GET("", shortcutHandler.GetUserShortcuts)
	shortcuts.PUT("/:id", shortcutHandler.UpdateShortcut)
	shortcuts.DELETE("/:id", shortcutHandler.DeleteShortcut)

	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings", settingsHandler.UpdateSettings)

	protected.GET("/export", exportHandler.Export)
	protected.POST("/import", exportHandler.Import)

	protected.GET("/rates/blue", rateHandler.GetRate)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token.
func (app *testApp) registerUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}
