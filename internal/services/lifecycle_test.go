package services

import (
	"testing"

	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLifecycleDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	db.AutoMigrate(&models.User{}, &models.Ticket{}, &models.StatusHistory{})
	return db
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.TicketStatus
		ok       bool
	}{
		{models.StatusOpen, models.StatusInProgress, true},
		{models.StatusOpen, models.StatusClosed, true}, // admin override
		{models.StatusOpen, models.StatusResolved, false},
		{models.StatusOpen, models.StatusOpen, false},
		{models.StatusInProgress, models.StatusResolved, true},
		{models.StatusInProgress, models.StatusClosed, true},
		{models.StatusInProgress, models.StatusOpen, false},
		{models.StatusResolved, models.StatusClosed, true},
		{models.StatusResolved, models.StatusInProgress, false},
		{models.StatusClosed, models.StatusOpen, false},
		{models.StatusClosed, models.StatusInProgress, false},
		{models.StatusClosed, models.StatusResolved, false},
		{models.StatusClosed, models.StatusClosed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, models.StatusInProgress, s)

	_, ok = ParseStatus("ARCHIVED")
	assert.False(t, ok)
}

func TestTransition_AppendsHistoryAndBumpsVersion(t *testing.T) {
	db := setupLifecycleDB(t)

	admin := models.User{ID: "adm_tr", Username: "adm_tr", Email: "adm_tr@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	ticket := models.Ticket{
		ID: "t_tr", TicketNumber: "CT-400001", Title: "x", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusOpen,
	}
	db.Create(&ticket)

	appErr := Transition(db, &ticket, &admin, models.StatusInProgress, "picked up")
	assert.Nil(t, appErr)
	assert.Equal(t, models.StatusInProgress, ticket.Status)
	assert.Equal(t, 1, ticket.Version)

	var stored models.Ticket
	db.First(&stored, "id = ?", ticket.ID)
	assert.Equal(t, models.StatusInProgress, stored.Status)

	var history []models.StatusHistory
	db.Where("ticket_id = ?", ticket.ID).Order("created_at asc").Find(&history)
	assert.Len(t, history, 1)
	assert.Equal(t, "picked up", history[0].Note)
}

func TestTransition_RequiresNote(t *testing.T) {
	db := setupLifecycleDB(t)

	admin := models.User{ID: "adm_note", Username: "adm_note", Email: "adm_note@example.com", Role: models.RoleAdmin}
	db.Create(&admin)
	ticket := models.Ticket{
		ID: "t_note", TicketNumber: "CT-400002", Title: "x", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusOpen,
	}
	db.Create(&ticket)

	appErr := Transition(db, &ticket, &admin, models.StatusInProgress, "")
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, models.StatusOpen, ticket.Status)
}

func TestTransition_StaleVersionConflicts(t *testing.T) {
	db := setupLifecycleDB(t)

	admin := models.User{ID: "adm_st", Username: "adm_st", Email: "adm_st@example.com", Role: models.RoleAdmin}
	db.Create(&admin)

	ticket := models.Ticket{
		ID: "t_st", TicketNumber: "CT-400003", Title: "x", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusOpen,
	}
	db.Create(&ticket)

	// Two actors loaded the same snapshot.
	first := ticket
	second := ticket

	appErr := Transition(db, &first, &admin, models.StatusInProgress, "first wins")
	assert.Nil(t, appErr)

	appErr = Transition(db, &second, &admin, models.StatusClosed, "second loses")
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindConflictingUpdate, appErr.Kind)

	// Exactly one transition applied.
	var stored models.Ticket
	db.First(&stored, "id = ?", ticket.ID)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestTransition_StaffOutsideCategoryDenied(t *testing.T) {
	db := setupLifecycleDB(t)

	staff := models.User{ID: "s_tr", Username: "s_tr", Email: "s_tr@example.com", Role: models.RoleStaff, AssignedCategory: "Roads"}
	db.Create(&staff)
	ticket := models.Ticket{
		ID: "t_sc", TicketNumber: "CT-400004", Title: "x", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusOpen,
	}
	db.Create(&ticket)

	appErr := Transition(db, &ticket, &staff, models.StatusInProgress, "n")
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindCategoryAccessDenied, appErr.Kind)
}

func TestRatingAllowed(t *testing.T) {
	assert.NotNil(t, RatingAllowed(&models.Ticket{Status: models.StatusOpen}))
	assert.NotNil(t, RatingAllowed(&models.Ticket{Status: models.StatusInProgress}))
	assert.Nil(t, RatingAllowed(&models.Ticket{Status: models.StatusResolved}))
	assert.Nil(t, RatingAllowed(&models.Ticket{Status: models.StatusClosed}))
}

func TestEngagementAllowed(t *testing.T) {
	assert.Nil(t, EngagementAllowed(&models.Ticket{Status: models.StatusOpen}))
	assert.Nil(t, EngagementAllowed(&models.Ticket{Status: models.StatusResolved}))

	appErr := EngagementAllowed(&models.Ticket{Status: models.StatusClosed})
	assert.NotNil(t, appErr)
	assert.Equal(t, apperrors.KindTicketClosed, appErr.Kind)
}
