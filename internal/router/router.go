// Package router builds the HTTP route table shared by the API server and the
// end-to-end tests.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "billnudge/internal/docs" // swagger docs
	"billnudge/internal/handlers"
	"billnudge/internal/middleware"
	"billnudge/internal/services"
)

// Deps are the services the routes are served from.
type Deps struct {
	Users             services.UserServicer
	Categories        services.CategoryServicer
	Transactions      services.TransactionServicer
	RecurringExpenses services.RecurringExpenseServicer
	Budgets           services.BudgetServicer
	Reminders         services.ReminderServicer
	Audit             services.AuditServicer
}

// NewDeps wires every service against db with the same options.
func NewDeps(db *gorm.DB, opts ...services.Option) Deps {
	return Deps{
		Users:             services.NewUserService(db, opts...),
		Categories:        services.NewCategoryService(db),
		Transactions:      services.NewTransactionService(db, opts...),
		RecurringExpenses: services.NewRecurringExpenseService(db, opts...),
		Budgets:           services.NewBudgetService(db, opts...),
		Reminders:         services.NewReminderService(db, opts...),
		Audit:             services.NewAuditService(db),
	}
}

// Setup returns a gin engine with middleware and all /api/v1 routes.
func Setup(deps Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Audit)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories, deps.Audit)
	transactionHandler := handlers.NewTransactionHandler(deps.Transactions, deps.Audit)
	recurringHandler := handlers.NewRecurringExpenseHandler(deps.RecurringExpenses, deps.Audit)
	budgetHandler := handlers.NewBudgetHandler(deps.Budgets, deps.Audit)
	reminderHandler := handlers.NewReminderHandler(deps.Reminders, deps.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/token", authHandler.Token)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/telegram", authHandler.UpdateTelegramChat)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	recurring := protected.Group("/recurring-expenses")
	recurring.POST("", recurringHandler.CreateRecurringExpense)
	recurring.GET("", recurringHandler.GetRecurringExpenses)
	recurring.GET("/summary", recurringHandler.GetSummary)
	recurring.GET("/:id", recurringHandler.GetRecurringExpenseByID)
	recurring.PUT("/:id", recurringHandler.UpdateRecurringExpense)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringExpense)
	recurring.POST("/:id/pay", recurringHandler.RecordPayment)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	reminders := protected.Group("/reminders")
	reminders.POST("", reminderHandler.CreateReminder)
	reminders.GET("", reminderHandler.GetReminders)
	reminders.GET("/:id", reminderHandler.GetReminderByID)
	reminders.PUT("/:id", reminderHandler.UpdateReminder)
	reminders.DELETE("/:id", reminderHandler.DeleteReminder)
	reminders.POST("/:id/snooze", reminderHandler.SnoozeReminder)
	reminders.POST("/:id/complete", reminderHandler.CompleteReminder)

	return router
}
