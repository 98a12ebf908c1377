package handlers

import (
	"net/http"
	"strconv"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/Genocadio/citizen-engagement-backend/internal/services"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ============================================
// TICKET OVERSIGHT
// ============================================

// AdminListTickets returns all tickets (public and private) for triage.
// Staff get the listing filtered down to their assigned category.
func AdminListTickets(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := database.DB.Preload("Author").Preload("AssignedTo").Model(&models.Ticket{})

	if actor.Role == models.RoleStaff {
		query = query.Where("category = ?", actor.AssignedCategory)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		parsed, ok := services.ParseStatus(status)
		if !ok {
			respondError(c, apperrors.Validation("unknown status filter: "+status))
			return
		}
		query = query.Where("status = ?", parsed)
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tickets).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch tickets"))
		return
	}

	// Staff/admin see anonymous tickets unredacted.
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "limit": limit, "offset": offset})
}

// ============================================
// DASHBOARD
// ============================================

type statusCount struct {
	Status models.TicketStatus `json:"status"`
	Count  int64               `json:"count"`
}

type groupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AdminDashboard aggregates ticket counts by status, category and type plus
// the average rating over rated tickets.
func AdminDashboard(c *gin.Context) {
	var total int64
	database.DB.Model(&models.Ticket{}).Count(&total)

	var byStatus []statusCount
	database.DB.Model(&models.Ticket{}).
		Select("status, count(*) as count").
		Group("status").Scan(&byStatus)

	var byCategory []groupCount
	database.DB.Model(&models.Ticket{}).
		Select("category as key, count(*) as count").
		Group("category").Scan(&byCategory)

	var byType []groupCount
	database.DB.Model(&models.Ticket{}).
		Select("type as key, count(*) as count").
		Group("type").Scan(&byType)

	var resolved int64
	database.DB.Model(&models.Ticket{}).
		Where("status IN ?", []models.TicketStatus{models.StatusResolved, models.StatusClosed}).
		Count(&resolved)

	var avgRating float64
	database.DB.Model(&models.Ticket{}).
		Where("rating IS NOT NULL").
		Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	resolutionRate := 0.0
	if total > 0 {
		resolutionRate = float64(resolved) / float64(total)
	}

	c.JSON(http.StatusOK, gin.H{
		"totalTickets":   total,
		"byStatus":       byStatus,
		"byCategory":     byCategory,
		"byType":         byType,
		"resolutionRate": resolutionRate,
		"averageRating":  avgRating,
	})
}

// AdminGetAuditLog returns the most recent admin/staff actions.
func AdminGetAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > 200 {
		limit = 200
	}

	var actions []models.AdminAction
	if err := database.DB.Preload("Admin").Order("created_at desc").
		Limit(limit).Find(&actions).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch audit log"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// ============================================
// USER MANAGEMENT
// ============================================

// AdminListUsers GET /admin/users
func AdminListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > 200 {
		limit = 200
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch users"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AdminSetUserRole PATCH /admin/users/:id/role — grants or revokes staff
// access and sets the staff category scope.
func AdminSetUserRole(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	targetID := c.Param("id")

	var input struct {
		Role             string `json:"role" binding:"required"`
		Agency           string `json:"agency"`
		AssignedCategory string `json:"assignedCategory"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}

	role := models.Role(input.Role)
	if role != models.RoleCitizen && role != models.RoleStaff && role != models.RoleAdmin {
		respondError(c, apperrors.Validation("role must be CITIZEN, STAFF or ADMIN"))
		return
	}
	if role == models.RoleStaff {
		if input.AssignedCategory == "" {
			respondError(c, apperrors.Validation("staff require an assigned category"))
			return
		}
		if !services.ValidCategory(input.AssignedCategory) {
			respondError(c, apperrors.Validation("unknown category: "+input.AssignedCategory))
			return
		}
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		respondError(c, apperrors.NotFound("User not found"))
		return
	}

	updates := map[string]interface{}{
		"role":              role,
		"agency":            input.Agency,
		"assigned_category": input.AssignedCategory,
	}
	if err := database.DB.Model(&target).Updates(updates).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to update user"))
		return
	}

	logAdminAction(database.DB, actor.ID, models.ActionSetRole, target.ID, "user",
		"Role set to "+string(role))

	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}
