package services

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
)

// StaffCanAct authorizes a staff/admin mutation of a ticket. Admins are
// unconstrained; staff are confined to their assigned category.
func StaffCanAct(actor *models.User, ticket *models.Ticket) *apperrors.AppError {
	if actor == nil || !actor.Role.IsStaff() {
		return apperrors.Unauthorized("only staff or admin may perform this operation")
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.AssignedCategory == "" || actor.AssignedCategory != ticket.Category {
		return apperrors.CategoryAccessDenied(
			"staff scoped to category " + actor.AssignedCategory + " cannot act on a " + ticket.Category + " ticket")
	}
	return nil
}

// CanViewTicket decides read access. Staff/admin see everything; citizens see
// their own tickets plus public ones.
func CanViewTicket(viewer *models.User, ticket *models.Ticket) bool {
	if ticket.IsPublic {
		return true
	}
	if viewer == nil {
		return false
	}
	if viewer.Role.IsStaff() {
		return true
	}
	return IsAuthor(viewer, ticket)
}

// IsAuthor reports whether the viewer submitted the ticket.
func IsAuthor(viewer *models.User, ticket *models.Ticket) bool {
	return viewer != nil && ticket.AuthorID != nil && *ticket.AuthorID == viewer.ID
}

// RedactTicket applies the read-time anonymity policy: for anonymous tickets
// the author reference (and with it name/email/phone) is withheld from every
// caller except the author themselves and staff/admin. Storage is never
// modified, only the outgoing payload.
func RedactTicket(ticket *models.Ticket, viewer *models.User) {
	if !ticket.IsAnonymous {
		scrubContactFields(ticket, viewer)
		return
	}
	if viewer != nil && (viewer.Role.IsStaff() || IsAuthor(viewer, ticket)) {
		return
	}
	ticket.AuthorID = nil
	ticket.Author = nil
	for i := range ticket.StatusHistory {
		// The seed entry carries the author id.
		if ticket.StatusHistory[i].ChangedBy != nil && !ticket.StatusHistory[i].ChangedBy.Role.IsStaff() {
			ticket.StatusHistory[i].ChangedByID = nil
			ticket.StatusHistory[i].ChangedBy = nil
		}
	}
}

// scrubContactFields hides email/phone of a non-anonymous author from other
// citizens; the name stays visible.
func scrubContactFields(ticket *models.Ticket, viewer *models.User) {
	if ticket.Author == nil {
		return
	}
	if viewer != nil && (viewer.Role.IsStaff() || IsAuthor(viewer, ticket)) {
		return
	}
	ticket.Author.Email = ""
	ticket.Author.Phone = ""
}

// RedactTickets applies RedactTicket over a page of results.
func RedactTickets(tickets []models.Ticket, viewer *models.User) {
	for i := range tickets {
		RedactTicket(&tickets[i], viewer)
	}
}
