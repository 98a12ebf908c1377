package services

import (
	"strings"

	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"gorm.io/gorm"
)

// allowedTransitions is the full edge set of the ticket state machine.
// OPEN->CLOSED and IN_PROGRESS->CLOSED are administrative overrides; nothing
// leaves CLOSED.
var allowedTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.StatusOpen:       {models.StatusInProgress, models.StatusClosed},
	models.StatusInProgress: {models.StatusResolved, models.StatusClosed},
	models.StatusResolved:   {models.StatusClosed},
	models.StatusClosed:     {},
}

// CanTransition reports whether `to` is reachable from `from` in one step.
func CanTransition(from, to models.TicketStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseStatus maps client input onto a known status value.
func ParseStatus(s string) (models.TicketStatus, bool) {
	switch models.TicketStatus(strings.ToUpper(s)) {
	case models.StatusOpen:
		return models.StatusOpen, true
	case models.StatusInProgress:
		return models.StatusInProgress, true
	case models.StatusResolved:
		return models.StatusResolved, true
	case models.StatusClosed:
		return models.StatusClosed, true
	}
	return "", false
}

// Transition applies a status change on behalf of a staff/admin actor.
// Authorization is checked before business rules; the write itself is an
// optimistic version check so a concurrent transition loses cleanly with
// CONFLICTING_UPDATE instead of double-applying.
func Transition(db *gorm.DB, ticket *models.Ticket, actor *models.User, newStatus models.TicketStatus, note string) *apperrors.AppError {
	if actor == nil {
		return apperrors.Unauthorized("actor identity is required for status changes")
	}
	if appErr := StaffCanAct(actor, ticket); appErr != nil {
		return appErr
	}
	if note == "" {
		return apperrors.Validation("a status change requires a note")
	}
	if !CanTransition(ticket.Status, newStatus) {
		return apperrors.InvalidTransition(
			"cannot move ticket from " + string(ticket.Status) + " to " + string(newStatus))
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND version = ?", ticket.ID, ticket.Version).
			Updates(map[string]interface{}{
				"status":  newStatus,
				"version": gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ConflictingUpdate("ticket was updated concurrently, retry with fresh state")
		}

		entry := models.StatusHistory{
			TicketID:    ticket.ID,
			Status:      newStatus,
			ChangedByID: &actor.ID,
			Note:        note,
		}
		return tx.Create(&entry).Error
	})

	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		return apperrors.Internal("failed to apply status change")
	}

	ticket.Status = newStatus
	ticket.Version++
	return nil
}

// SeedHistory records the initial OPEN entry at ticket creation. Must run in
// the same transaction as the ticket insert so history length >= 1 holds.
func SeedHistory(tx *gorm.DB, ticket *models.Ticket) error {
	entry := models.StatusHistory{
		TicketID:    ticket.ID,
		Status:      models.StatusOpen,
		ChangedByID: ticket.AuthorID,
		Note:        "Ticket submitted",
	}
	return tx.Create(&entry).Error
}

// RatingAllowed gates citizen satisfaction ratings to terminal states.
func RatingAllowed(ticket *models.Ticket) *apperrors.AppError {
	if !ticket.Status.Terminal() {
		return apperrors.InvalidState("ticket can only be rated once resolved or closed")
	}
	return nil
}

// EngagementAllowed rejects citizen engagement (comments, follows, likes)
// after closure.
func EngagementAllowed(ticket *models.Ticket) *apperrors.AppError {
	if ticket.Status == models.StatusClosed {
		return apperrors.TicketClosed("ticket is closed and no longer accepts engagement")
	}
	return nil
}
