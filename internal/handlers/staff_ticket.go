package handlers

import (
	"net/http"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/Genocadio/citizen-engagement-backend/internal/queue"
	"github.com/Genocadio/citizen-engagement-backend/internal/services"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChangeStatus handles PATCH /tickets/:id/status. Staff/admin only; staff
// must be scoped to the ticket's category.
func ChangeStatus(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}

	newStatus, ok := services.ParseStatus(input.Status)
	if !ok {
		respondError(c, apperrors.Validation("unknown status: "+input.Status))
		return
	}

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	if appErr := services.Transition(database.DB, ticket, actor, newStatus, input.Note); appErr != nil {
		respondError(c, appErr)
		return
	}

	logAdminAction(database.DB, actor.ID, models.ActionChangeStatus, ticket.ID, "ticket",
		"Status changed to "+string(newStatus))

	go database.CacheInvalidate("tickets:*")
	go queue.PublishTicketEvent(queue.TicketEvent{
		Event:        "ticket.status_changed",
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Status:       string(newStatus),
		ActorID:      actor.ID,
	})
	go notifyFollowers(ticket, actor.ID, models.NotificationTypeStatusChange,
		"Ticket "+ticket.TicketNumber+" is now "+string(newStatus))

	database.DB.Preload("ChangedBy").Where("ticket_id = ?", ticket.ID).
		Order("created_at asc").Find(&ticket.StatusHistory)
	services.RedactTicket(ticket, actor)

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// AddResponse handles POST /tickets/:id/response: the official staff reply,
// optionally bundling a status transition in the same request.
func AddResponse(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var input struct {
		Message      string `json:"message" binding:"required,max=5000"`
		StatusUpdate string `json:"statusUpdate"`
		Note         string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	if appErr := services.StaffCanAct(actor, ticket); appErr != nil {
		respondError(c, appErr)
		return
	}

	// Validate the bundled transition up front, then write the response and
	// apply the transition in one transaction: if the transition loses the
	// optimistic-version race the response rolls back with it, so a retry
	// cannot leave a duplicate behind.
	var newStatus models.TicketStatus
	if input.StatusUpdate != "" {
		parsed, ok := services.ParseStatus(input.StatusUpdate)
		if !ok {
			respondError(c, apperrors.Validation("unknown status: "+input.StatusUpdate))
			return
		}
		if !services.CanTransition(ticket.Status, parsed) {
			respondError(c, apperrors.InvalidTransition(
				"cannot move ticket from "+string(ticket.Status)+" to "+string(parsed)))
			return
		}
		newStatus = parsed
	}

	response := models.TicketResponse{
		TicketID:    ticket.ID,
		ResponderID: actor.ID,
		Message:     input.Message,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&response).Error; err != nil {
			return err
		}
		if newStatus != "" {
			note := input.Note
			if note == "" {
				note = "Official response added"
			}
			if appErr := services.Transition(tx, ticket, actor, newStatus, note); appErr != nil {
				return appErr
			}
		}
		return nil
	})
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			respondError(c, appErr)
			return
		}
		respondError(c, apperrors.Internal("Failed to save response"))
		return
	}

	logAdminAction(database.DB, actor.ID, models.ActionRespond, ticket.ID, "ticket", "Official response added")

	go database.CacheInvalidate("tickets:*")
	go queue.PublishTicketEvent(queue.TicketEvent{
		Event:        "ticket.response_added",
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Status:       string(ticket.Status),
		ActorID:      actor.ID,
	})
	go notifyFollowers(ticket, actor.ID, models.NotificationTypeResponse,
		"Official response on ticket "+ticket.TicketNumber)

	database.DB.Preload("Responder").First(&response, "id = ?", response.ID)
	c.JSON(http.StatusCreated, gin.H{"response": response, "status": ticket.Status})
}

// AssignTicket handles POST /tickets/:id/assign. Sets the handling agency
// and/or staff member.
func AssignTicket(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var input struct {
		Agency       string `json:"agency"`
		AssignedToID string `json:"assignedToId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}
	if input.Agency == "" && input.AssignedToID == "" {
		respondError(c, apperrors.Validation("agency or assignedToId is required"))
		return
	}

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	if appErr := services.StaffCanAct(actor, ticket); appErr != nil {
		respondError(c, appErr)
		return
	}

	updates := map[string]interface{}{}
	if input.Agency != "" {
		updates["assigned_agency"] = input.Agency
	}
	if input.AssignedToID != "" {
		var assignee models.User
		if err := database.DB.First(&assignee, "id = ?", input.AssignedToID).Error; err != nil {
			respondError(c, apperrors.NotFound("Assignee not found"))
			return
		}
		if !assignee.Role.IsStaff() {
			respondError(c, apperrors.Validation("tickets can only be assigned to staff"))
			return
		}
		updates["assigned_to_id"] = input.AssignedToID
	}

	if err := database.DB.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
		Updates(updates).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to assign ticket"))
		return
	}

	logAdminAction(database.DB, actor.ID, models.ActionAssign, ticket.ID, "ticket", "Ticket assigned")
	go database.CacheInvalidate("tickets:*")

	c.JSON(http.StatusOK, gin.H{"message": "Ticket assigned"})
}
