package handlers

import (
	"time"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/Genocadio/citizen-engagement-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondError writes an AppError with its stable kind. Every handler error
// path funnels through here so no failure is silently swallowed.
func respondError(c *gin.Context, err *apperrors.AppError) {
	c.JSON(err.Code, gin.H{"error": err.Message, "kind": err.Kind})
}

// findTicket resolves a ticket by primary id or by its CT-XXXXXX code.
func findTicket(db *gorm.DB, ref string) (*models.Ticket, *apperrors.AppError) {
	var ticket models.Ticket
	query := db.Preload("Author").Preload("AssignedTo")
	var err error
	if utils.IsTicketNumber(ref) {
		err = query.First(&ticket, "ticket_number = ?", ref).Error
	} else {
		err = query.First(&ticket, "id = ?", ref).Error
	}
	if err != nil {
		return nil, apperrors.NotFound("Ticket not found")
	}
	return &ticket, nil
}

// attachEngagementState fills the caller-specific virtual fields and the
// latest official response.
func attachEngagementState(db *gorm.DB, ticket *models.Ticket, viewer *models.User) {
	var response models.TicketResponse
	if err := db.Preload("Responder").Where("ticket_id = ?", ticket.ID).
		Order("created_at desc").First(&response).Error; err == nil {
		ticket.Response = &response
	}

	if viewer == nil {
		return
	}
	var count int64
	db.Model(&models.TicketFollow{}).Where("ticket_id = ? AND user_id = ?", ticket.ID, viewer.ID).Count(&count)
	ticket.IsFollowing = count > 0

	count = 0
	db.Model(&models.TicketLike{}).Where("ticket_id = ? AND user_id = ?", ticket.ID, viewer.ID).Count(&count)
	ticket.HasLiked = count > 0
}

func logAdminAction(tx *gorm.DB, adminID string, action models.ActionType, targetID string, targetType string, reason string) error {
	audit := models.AdminAction{
		ID:         uuid.New().String(),
		AdminID:    adminID,
		Action:     action,
		TargetID:   targetID,
		TargetType: targetType,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	return tx.Create(&audit).Error
}

// notifyFollowers fans a notification out to everyone following a ticket,
// skipping the actor themselves. Runs best-effort.
func notifyFollowers(ticket *models.Ticket, actorID string, ntype models.NotificationType, message string) {
	var follows []models.TicketFollow
	if err := database.DB.Where("ticket_id = ?", ticket.ID).Find(&follows).Error; err != nil {
		return
	}

	recipients := make(map[string]bool)
	for _, f := range follows {
		recipients[f.UserID] = true
	}
	if ticket.AuthorID != nil {
		recipients[*ticket.AuthorID] = true
	}
	delete(recipients, actorID)

	for userID := range recipients {
		n := models.Notification{
			UserID:   userID,
			ActorID:  actorID,
			Type:     ntype,
			TicketID: &ticket.ID,
			Message:  message,
		}
		CreateNotification(database.DB, n)
	}
}
