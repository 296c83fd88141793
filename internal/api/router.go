package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lyratng/ai-menu/internal/api/handler"
	"github.com/lyratng/ai-menu/internal/api/middleware"
	"github.com/lyratng/ai-menu/internal/repository"
	"github.com/lyratng/ai-menu/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	generation *service.GenerationService,
	menus *repository.MenuRepository,
	archive handler.ArchiveReader,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	menuHandler := handler.NewMenuHandler(generation, menus, archive)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Menu generation
		v1.POST("/menus/generate", menuHandler.Generate)

		// Menus
		v1.GET("/menus", menuHandler.ListMenus)
		v1.GET("/menus/:id", menuHandler.GetMenu)
		v1.GET("/menus/:id/document", menuHandler.GetMenuDocument)
		v1.DELETE("/menus/:id", menuHandler.DeleteMenu)

		// Generation audit trail
		v1.GET("/events", menuHandler.ListEvents)
	}

	return r
}
