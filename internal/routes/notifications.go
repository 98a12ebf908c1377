package routes

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/handlers"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterNotificationRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", handlers.GetNotifications)
		notifications.GET("/unread-count", handlers.GetUnreadCount)
		notifications.PATCH("/:id/read", handlers.MarkNotificationRead)
		notifications.PATCH("/read-all", handlers.MarkAllNotificationsRead)
	}
}
