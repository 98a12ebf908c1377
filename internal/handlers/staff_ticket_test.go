package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestChangeStatus_CitizenRejected(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	citizen := models.User{ID: "u_cs_c", Username: "u_cs_c", Email: "u_cs_c@example.com"}
	database.DB.Create(&citizen)
	ticket := seedEngagementTicket(t, "t_cs_c", "CT-300001", citizen.ID)

	w := httptest.NewRecorder()
	c := testContext(w, "PATCH", map[string]string{"status": "IN_PROGRESS", "note": "n"}, &citizen)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	ChangeStatus(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	var unchanged models.Ticket
	database.DB.First(&unchanged, "id = ?", ticket.ID)
	assert.Equal(t, models.StatusOpen, unchanged.Status)
}

func TestChangeStatus_CategoryScopeEnforced(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_cs_a", Username: "u_cs_a", Email: "u_cs_a@example.com"}
	roadsStaff := models.User{ID: "s_roads", Username: "s_roads", Email: "s_roads@example.com", Role: models.RoleStaff, AssignedCategory: "Roads"}
	database.DB.Create(&author)
	database.DB.Create(&roadsStaff)
	ticket := seedEngagementTicket(t, "t_cs_s", "CT-300002", author.ID) // Water ticket

	w := httptest.NewRecorder()
	c := testContext(w, "PATCH", map[string]string{"status": "IN_PROGRESS", "note": "n"}, &roadsStaff)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	ChangeStatus(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_ACCESS_DENIED")
}

func TestChangeStatus_AdminUnconstrainedByCategory(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_cs_ad", Username: "u_cs_ad", Email: "u_cs_ad@example.com"}
	admin := models.User{ID: "adm_cs", Username: "adm_cs", Email: "adm_cs@example.com", Role: models.RoleAdmin}
	database.DB.Create(&author)
	database.DB.Create(&admin)
	ticket := seedEngagementTicket(t, "t_cs_ad", "CT-300003", author.ID)

	// Admin override: straight to CLOSED from OPEN
	w := httptest.NewRecorder()
	c := testContext(w, "PATCH", map[string]string{"status": "CLOSED", "note": "Duplicate of CT-300001"}, &admin)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	ChangeStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var closed models.Ticket
	database.DB.First(&closed, "id = ?", ticket.ID)
	assert.Equal(t, models.StatusClosed, closed.Status)
}

func TestChangeStatus_NothingLeavesClosed(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_cs_cl", Username: "u_cs_cl", Email: "u_cs_cl@example.com"}
	admin := models.User{ID: "adm_cl", Username: "adm_cl", Email: "adm_cl@example.com", Role: models.RoleAdmin}
	database.DB.Create(&author)
	database.DB.Create(&admin)

	authorID := author.ID
	ticket := models.Ticket{
		ID: "t_cs_cl", TicketNumber: "CT-300004", Title: "x", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusClosed,
		IsPublic: true, AuthorID: &authorID,
	}
	database.DB.Create(&ticket)

	w := httptest.NewRecorder()
	c := testContext(w, "PATCH", map[string]string{"status": "OPEN", "note": "reopen please"}, &admin)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	ChangeStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
}

func TestChangeStatus_NoteRequired(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_cs_n", Username: "u_cs_n", Email: "u_cs_n@example.com"}
	admin := models.User{ID: "adm_n", Username: "adm_n", Email: "adm_n@example.com", Role: models.RoleAdmin}
	database.DB.Create(&author)
	database.DB.Create(&admin)
	ticket := seedEngagementTicket(t, "t_cs_n", "CT-300005", author.ID)

	w := httptest.NewRecorder()
	c := testContext(w, "PATCH", map[string]string{"status": "IN_PROGRESS"}, &admin)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	ChangeStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddResponse_InvalidBundledStatusLeavesNoResponse(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_ar_a", Username: "u_ar_a", Email: "u_ar_a@example.com"}
	staff := models.User{ID: "s_ar", Username: "s_ar", Email: "s_ar@example.com", Role: models.RoleStaff, AssignedCategory: "Water"}
	database.DB.Create(&author)
	database.DB.Create(&staff)
	ticket := seedEngagementTicket(t, "t_ar", "CT-300006", author.ID)

	// OPEN -> RESOLVED skips IN_PROGRESS, so the whole request is rejected
	w := httptest.NewRecorder()
	c := testContext(w, "POST", map[string]string{"message": "done", "statusUpdate": "RESOLVED"}, &staff)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	AddResponse(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	database.DB.Model(&models.TicketResponse{}).Where("ticket_id = ?", ticket.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddResponse_VersionConflictRollsBackResponse(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_rc_a", Username: "u_rc_a", Email: "u_rc_a@example.com"}
	staff := models.User{ID: "s_rc", Username: "s_rc", Email: "s_rc@example.com", Role: models.RoleStaff, AssignedCategory: "Water"}
	database.DB.Create(&author)
	database.DB.Create(&staff)
	ticket := seedEngagementTicket(t, "t_rc", "CT-300010", author.ID)

	// Another staff member wins the version race between the response insert
	// and the bundled transition.
	database.DB.Callback().Create().After("gorm:create").Register("bump_ticket_version", func(d *gorm.DB) {
		if d.Statement.Table != "ticket_responses" {
			return
		}
		d.Session(&gorm.Session{NewDB: true}).Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			UpdateColumn("version", gorm.Expr("version + 1"))
	})
	defer database.DB.Callback().Create().Remove("bump_ticket_version")

	w := httptest.NewRecorder()
	c := testContext(w, "POST", map[string]string{"message": "on it", "statusUpdate": "IN_PROGRESS"}, &staff)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	AddResponse(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICTING_UPDATE")

	// The failed transition must not leave the response behind, or a retry
	// would duplicate it.
	var count int64
	database.DB.Model(&models.TicketResponse{}).Where("ticket_id = ?", ticket.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var stored models.Ticket
	database.DB.First(&stored, "id = ?", ticket.ID)
	assert.Equal(t, models.StatusOpen, stored.Status)
}

func TestAssignTicket(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_as_a", Username: "u_as_a", Email: "u_as_a@example.com"}
	admin := models.User{ID: "adm_as", Username: "adm_as", Email: "adm_as@example.com", Role: models.RoleAdmin}
	waterStaff := models.User{ID: "s_as", Username: "s_as", Email: "s_as@example.com", Role: models.RoleStaff, AssignedCategory: "Water", Agency: "WASAC"}
	database.DB.Create(&author)
	database.DB.Create(&admin)
	database.DB.Create(&waterStaff)
	ticket := seedEngagementTicket(t, "t_as", "CT-300007", author.ID)

	w := httptest.NewRecorder()
	c := testContext(w, "POST", map[string]string{"agency": "WASAC", "assignedToId": waterStaff.ID}, &admin)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	AssignTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var assigned models.Ticket
	database.DB.First(&assigned, "id = ?", ticket.ID)
	assert.Equal(t, "WASAC", assigned.AssignedAgency)
	assert.NotNil(t, assigned.AssignedToID)
	assert.Equal(t, waterStaff.ID, *assigned.AssignedToID)

	// Assigning to a citizen is rejected
	w = httptest.NewRecorder()
	c = testContext(w, "POST", map[string]string{"assignedToId": author.ID}, &admin)
	c.Params = gin.Params{{Key: "id", Value: ticket.ID}}
	AssignTicket(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListTickets_StaffScopedToCategory(t *testing.T) {
	SetupTestDB()
	gin.SetMode(gin.TestMode)

	author := models.User{ID: "u_al", Username: "u_al", Email: "u_al@example.com"}
	waterStaff := models.User{ID: "s_al", Username: "s_al", Email: "s_al@example.com", Role: models.RoleStaff, AssignedCategory: "Water"}
	database.DB.Create(&author)
	database.DB.Create(&waterStaff)

	authorID := author.ID
	database.DB.Create(&models.Ticket{
		ID: "t_al_w", TicketNumber: "CT-300008", Title: "w", Description: "d",
		Type: models.TypeComplaint, Category: "Water", Status: models.StatusOpen, IsPublic: true, AuthorID: &authorID,
	})
	database.DB.Create(&models.Ticket{
		ID: "t_al_r", TicketNumber: "CT-300009", Title: "r", Description: "d",
		Type: models.TypeComplaint, Category: "Roads", Status: models.StatusOpen, IsPublic: true, AuthorID: &authorID,
	})

	w := httptest.NewRecorder()
	c := testContext(w, "GET", nil, &waterStaff)
	AdminListTickets(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tickets []models.Ticket `json:"tickets"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Tickets, 1)
	assert.Equal(t, "Water", resp.Tickets[0].Category)
}
