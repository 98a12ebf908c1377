package handlers

import (
	"net/http"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/Genocadio/citizen-engagement-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetNotifications GET /notifications
func GetNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
		return
	}

	var notifications []models.Notification
	if err := database.DB.Preload("Actor").Preload("Ticket").
		Where("user_id = ?", user.ID).
		Order("created_at desc").Limit(50).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications", "kind": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount GET /notifications/unread-count
func GetUnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
		return
	}

	var count int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).Count(&count)

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead PATCH /notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
		return
	}
	notificationID := c.Param("id")

	var notification models.Notification
	if err := database.DB.First(&notification, "id = ?", notificationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found", "kind": "NOT_FOUND"})
		return
	}

	if notification.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "kind": "UNAUTHORIZED"})
		return
	}

	notification.IsRead = true
	database.DB.Save(&notification)

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// MarkAllNotificationsRead PATCH /notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
		return
	}

	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}

// CreateNotification persists a notification row. Delivery to external
// channels is the dispatcher's job, fed by the AMQP queue.
func CreateNotification(tx *gorm.DB, notification models.Notification) error {
	if err := tx.Create(&notification).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to create notification")
		return err
	}
	return nil
}
