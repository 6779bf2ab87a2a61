package router

import (
	"log"

	"github.com/anonto42/sone/backend/internal/core"
	"github.com/anonto42/sone/backend/internal/handlers"
	"github.com/anonto42/sone/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
)

// Dependencies are the collaborators the routes are wired to
type Dependencies struct {
	Core      *core.Core
	Links     middleware.FirebaseLinker
	JWTSecret string
	// FirebaseAuth is nil when Firebase is not configured
	FirebaseAuth middleware.TokenVerifier
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.RequestLogger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	sones := deps.Core.Directory

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("")
	api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret, sones))
	registerCoreRoutes(api, deps.Core)
	log.Println("JWT protected routes configured.")

	if deps.FirebaseAuth == nil {
		log.Println("Firebase not configured, skipping Firebase routes.")
		return
	}

	// --- Firebase login issues the JWTs used above ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(deps.FirebaseAuth, deps.Links, sones, deps.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Same routes, authenticated by Firebase ID token ---
	fb := e.Group("/firebase")
	fb.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, deps.Links, sones))
	registerCoreRoutes(fb, deps.Core)
	log.Println("Firebase routes configured.")
}

func registerCoreRoutes(g *echo.Group, c *core.Core) {
	handlers.NewNotificationHandler(c).RegisterNotificationRoutes(g)
	handlers.NewSoneHandler(c).RegisterSoneRoutes(g)
	handlers.NewLikeHandler(c).RegisterLikeRoutes(g)
	handlers.NewAlbumHandler(c).RegisterAlbumRoutes(g)
}
