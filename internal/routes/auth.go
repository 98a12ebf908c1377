package routes

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/handlers"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(r *gin.RouterGroup) {
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", handlers.Logout)
		protected.GET("/me", handlers.Me)
	}
}
