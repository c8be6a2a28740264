// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/domain/inventory"
	"github.com/your-org/production-backend/internal/domain/user"
	"github.com/your-org/production-backend/internal/domain/workorder"
	"github.com/your-org/production-backend/internal/interfaces/http/handlers"
	"github.com/your-org/production-backend/internal/interfaces/http/middleware"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure handed to every route group
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil when Redis is disabled
	Cache  catalog.Cache
	Config *config.Config
	Log    *logrus.Logger
}

// SetupRoutes registers every /api/v1 route on rg
func SetupRoutes(rg *gin.RouterGroup, deps Deps) {
	cfg := deps.Config

	lookup := catalog.NewLookup(deps.DB, deps.Cache)
	userService := user.NewService(deps.DB, cfg)
	catalogService := catalog.NewService(deps.DB, cfg, lookup)
	inventoryService := inventory.NewService(deps.DB, cfg)
	workOrderService := workorder.NewService(deps.DB, cfg, lookup)

	authHandler := handlers.NewAuthHandler(userService)
	adminHandler := handlers.NewUserAdminHandler(userService, user.NewAdminService(deps.DB, cfg))
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	workOrderHandler := handlers.NewWorkOrderHandler(workOrderService, pdf.NewService(cfg))

	SetupAuthRoutes(rg, cfg, authHandler)
	SetupFunctionRoutes(rg, cfg,
		catalogHandler.Callables(),
		inventoryHandler.Callables(),
		workOrderHandler.Callables(),
	)
	SetupWorkOrderRoutes(rg, cfg, workOrderHandler)
	SetupAdminRoutes(rg, cfg, adminHandler)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.AuthHandler) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", h.Login)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", h.Me)
			protected.PUT("/password", h.ChangePassword)
		}
	}
}

// SetupFunctionRoutes mounts each callable at POST /functions/<name>
func SetupFunctionRoutes(rg *gin.RouterGroup, cfg *config.Config, groups ...[]handlers.Callable) {
	functions := rg.Group("/functions")
	functions.Use(middleware.AuthMiddleware(cfg))

	for _, group := range groups {
		for _, fn := range group {
			functions.POST("/"+fn.Name, middleware.RequireRole(fn.MinRole), handlers.Invoke(fn))
		}
	}
}

// SetupWorkOrderRoutes sets up the non-JSON work order downloads
func SetupWorkOrderRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.WorkOrderHandler) {
	workOrders := rg.Group("/work-orders")
	workOrders.Use(middleware.AuthMiddleware(cfg))
	workOrders.Use(middleware.RequireRole(auth.RoleWorker))
	{
		workOrders.GET("/:id/sheet.pdf", h.DownloadSheet)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.UserAdminHandler) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		users := admin.Group("/users")
		{
			users.GET("", h.GetUsers)
			users.POST("", h.CreateUser)
			users.PATCH("/:id", h.UpdateUser)
		}
	}
}
