package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/phone-insights/internal/transport/http/handler"
	"github.com/ErlanBelekov/phone-insights/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, searchHandler *handler.SearchHandler, tokens middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := r.Group("/api")
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("", middleware.Auth(tokens))
	protected.POST("/search", searchHandler.Search)
	protected.GET("/searches", searchHandler.History)
	protected.GET("/analytics", searchHandler.Analytics)
	protected.GET("/profile", authHandler.Profile)

	return r
}
