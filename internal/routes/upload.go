package routes

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/handlers"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterUploadRoutes(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	upload.Use(middleware.AuthMiddleware())
	{
		upload.POST("", handlers.UploadAttachment)
	}
}
