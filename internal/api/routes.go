package api

import (
	"time"

	"festival-media-center/internal/api/handlers"
	"festival-media-center/internal/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the engine with middleware and every route
func NewRouter(h *handlers.Handler, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.Logger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	SetupRoutes(router, h)
	return router
}

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, h *handlers.Handler) {
	router.GET("/health", h.HealthCheck)
	// browsers cannot set headers on a websocket handshake, the token rides in the query
	router.GET("/ws", h.Toasts)

	v1 := router.Group("/api/v1")
	{
		setupPublicRoutes(v1, h)

		// Each form session is protected by the token issued when it was opened
		form := v1.Group("/forms/:id")
		form.Use(middleware.SessionAuth(h.SessionSecret))
		setupFormRoutes(form, h)
	}
}

// setupPublicRoutes configures routes that don't require a form token
func setupPublicRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	gallery := rg.Group("/gallery")
	{
		gallery.GET("", h.ListGallery)
		gallery.GET("/:id", h.GetGalleryItem)
	}

	wishes := rg.Group("/wishes")
	{
		wishes.GET("", h.ListWishes)
		wishes.GET("/export/csv", h.ExportWishesCSV)
		wishes.GET("/export/json", h.ExportWishesJSON)
	}

	rg.GET("/venue", h.GetVenue)
	rg.POST("/forms", h.OpenForm)

	// Preview locators are unguessable and short-lived, like object URLs
	rg.GET("/previews/:token", h.ServePreview)
	// Catalog objects, with the same transform query as previews:
	//   /api/v1/media/uploads/invite.png?preset=thumbnail
	//   /api/v1/media/uploads/invite.png?width=800&fit=contain&format=png
	rg.GET("/media/*key", h.ServeMediaFile)
}

// setupFormRoutes configures routes scoped to one form session
func setupFormRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	rg.GET("", h.GetForm)
	rg.DELETE("", h.CloseForm)
	rg.POST("/files", h.AttachFiles)
	rg.DELETE("/files/:index", h.RemoveFile)
	rg.POST("/submit", h.SubmitForm)
}
