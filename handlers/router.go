package handlers

import (
	"net/http"
	"time"

	"github.com/eerojala/My-video-game-collection/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	CORSOrigins     []string
	Limiter         middleware.Limiter
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// NewRouter mounts every route of the API on a new gin engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(h.log),
		middleware.ErrorLogger(h.log),
		h.metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.RemovePoweredBy(),
	)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}
	r.Use(middleware.TokenExtractor())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", h.metrics.Handler())

	api := r.Group("/api")
	{
		api.GET("/platforms", h.GetPlatforms)
		api.GET("/platforms/:id", h.GetPlatform)
		api.POST("/platforms", h.CreatePlatform)
		api.PUT("/platforms/:id", h.UpdatePlatform)
		api.DELETE("/platforms/:id", h.DeletePlatform)

		api.GET("/games", h.GetGames)
		api.GET("/games/:id", h.GetGame)
		api.POST("/games", h.CreateGame)
		api.PUT("/games/:id", h.UpdateGame)
		api.DELETE("/games/:id", h.DeleteGame)

		api.GET("/users", h.GetUsers)
		api.GET("/users/:id", h.GetUserByID)
		api.POST("/users", h.Register)

		api.POST("/login",
			middleware.LoginRateLimit(opts.Limiter, opts.LoginRateLimit, opts.LoginRateWindow, h.log),
			h.Login,
		)

		api.GET("/usergames", h.GetUserGames)
		api.GET("/usergames/:id", h.GetUserGame)
		api.POST("/usergames", h.AddUserGame)
		api.PUT("/usergames/:id", h.UpdateUserGame)
		api.DELETE("/usergames/:id", h.DeleteUserGame)

		api.GET("/stats", h.GetCatalogStats)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown endpoint"})
	})

	return r
}
