package services

import (
	"testing"

	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStaffCanAct(t *testing.T) {
	waterTicket := &models.Ticket{Category: "Water"}

	citizen := &models.User{ID: "c1", Role: models.RoleCitizen}
	appErr := StaffCanAct(citizen, waterTicket)
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindUnauthorized, appErr.Kind)

	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	assert.Nil(t, StaffCanAct(admin, waterTicket))

	waterStaff := &models.User{ID: "s1", Role: models.RoleStaff, AssignedCategory: "Water"}
	assert.Nil(t, StaffCanAct(waterStaff, waterTicket))

	roadsStaff := &models.User{ID: "s2", Role: models.RoleStaff, AssignedCategory: "Roads"}
	appErr = StaffCanAct(roadsStaff, waterTicket)
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindCategoryAccessDenied, appErr.Kind)

	// Staff without an assigned category cannot act anywhere
	unassigned := &models.User{ID: "s3", Role: models.RoleStaff}
	assert.NotNil(t, StaffCanAct(unassigned, waterTicket))
}

func TestCanViewTicket(t *testing.T) {
	authorID := "author"
	private := &models.Ticket{IsPublic: false, AuthorID: &authorID}
	public := &models.Ticket{IsPublic: true, AuthorID: &authorID}

	assert.True(t, CanViewTicket(nil, public))
	assert.False(t, CanViewTicket(nil, private))

	author := &models.User{ID: "author", Role: models.RoleCitizen}
	assert.True(t, CanViewTicket(author, private))

	stranger := &models.User{ID: "stranger", Role: models.RoleCitizen}
	assert.False(t, CanViewTicket(stranger, private))

	staff := &models.User{ID: "staff", Role: models.RoleStaff, AssignedCategory: "Roads"}
	assert.True(t, CanViewTicket(staff, private))
}

func TestRedactTicket_Anonymous(t *testing.T) {
	authorID := "author"
	author := &models.User{ID: "author", Name: "Jane", Email: "jane@example.com", Role: models.RoleCitizen}

	makeTicket := func() *models.Ticket {
		return &models.Ticket{
			IsAnonymous: true,
			AuthorID:    &authorID,
			Author:      author,
			StatusHistory: []models.StatusHistory{
				{Status: models.StatusOpen, ChangedByID: &authorID, ChangedBy: author},
			},
		}
	}

	// Stranger: identity gone everywhere, including the seed history entry
	ticket := makeTicket()
	RedactTicket(ticket, &models.User{ID: "stranger", Role: models.RoleCitizen})
	assert.Nil(t, ticket.AuthorID)
	assert.Nil(t, ticket.Author)
	assert.Nil(t, ticket.StatusHistory[0].ChangedByID)

	// Unauthenticated gets the same treatment
	ticket = makeTicket()
	RedactTicket(ticket, nil)
	assert.Nil(t, ticket.Author)

	// Staff keep visibility for follow-up
	ticket = makeTicket()
	RedactTicket(ticket, &models.User{ID: "staff", Role: models.RoleStaff})
	assert.NotNil(t, ticket.Author)

	// The author sees themselves
	ticket = makeTicket()
	RedactTicket(ticket, author)
	assert.NotNil(t, ticket.Author)
}

func TestRedactTicket_ContactFieldsHidden(t *testing.T) {
	authorID := "author"
	ticket := &models.Ticket{
		IsAnonymous: false,
		AuthorID:    &authorID,
		Author:      &models.User{ID: "author", Name: "Jane", Email: "jane@example.com", Phone: "0788000000"},
	}

	RedactTicket(ticket, &models.User{ID: "stranger", Role: models.RoleCitizen})

	// Name stays, contact details do not
	assert.Equal(t, "Jane", ticket.Author.Name)
	assert.Empty(t, ticket.Author.Email)
	assert.Empty(t, ticket.Author.Phone)
}
