package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/Genocadio/citizen-engagement-backend/internal/queue"
	"github.com/Genocadio/citizen-engagement-backend/internal/services"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/Genocadio/citizen-engagement-backend/pkg/logger"
	"github.com/Genocadio/citizen-engagement-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CreateTicketInput struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"required,max=5000"`
	Type        string          `json:"type" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Subcategory string          `json:"subcategory"`
	IsAnonymous bool            `json:"isAnonymous"`
	IsPublic    *bool           `json:"isPublic"`
	Location    models.Location `json:"location" binding:"required"`
	Attachments []string        `json:"attachments"`
}

func parseTicketType(s string) (models.TicketType, bool) {
	switch models.TicketType(strings.ToUpper(s)) {
	case models.TypeComplaint:
		return models.TypeComplaint, true
	case models.TypePositive:
		return models.TypePositive, true
	case models.TypeSuggestion:
		return models.TypeSuggestion, true
	}
	return "", false
}

// CreateTicket handles citizen submissions. Status is forced to OPEN and the
// first status history entry is seeded in the same transaction.
func CreateTicket(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Sign in to submit feedback"))
		return
	}

	allowed, err := database.CheckRateLimit(user.ID, 3, time.Minute)
	if err != nil {
		respondError(c, apperrors.Internal("Rate limit check failed"))
		return
	}
	if !allowed {
		respondError(c, apperrors.RateLimited("You're submitting too fast. Please wait a minute."))
		return
	}

	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}

	ticketType, ok := parseTicketType(input.Type)
	if !ok {
		respondError(c, apperrors.Validation("type must be one of COMPLAINT, POSITIVE, SUGGESTION"))
		return
	}
	if appErr := services.ValidateCategory(input.Category, input.Subcategory); appErr != nil {
		respondError(c, appErr)
		return
	}
	if appErr := services.ValidateLocation(input.Location); appErr != nil {
		respondError(c, appErr)
		return
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	ticket := models.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Type:        ticketType,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Status:      models.StatusOpen,
		IsPublic:    isPublic,
		IsAnonymous: input.IsAnonymous,
		AuthorID:    &user.ID,
		Location:    input.Location,
		Attachments: pq.StringArray(input.Attachments),
	}

	// The CT number is random; retry a few times on the rare unique
	// collision before giving up.
	var txErr error
	for attempt := 0; attempt < 3; attempt++ {
		ticket.TicketNumber = utils.GenerateTicketNumber()
		txErr = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&ticket).Error; err != nil {
				return err
			}
			return services.SeedHistory(tx, &ticket)
		})
		if txErr == nil {
			break
		}
		ticket.ID = ""
	}
	if txErr != nil {
		logger.Error().Err(txErr).Msg("Failed to create ticket")
		respondError(c, apperrors.Internal("Failed to save ticket"))
		return
	}

	go database.CacheInvalidate("tickets:*")
	go queue.PublishTicketEvent(queue.TicketEvent{
		Event:        "ticket.created",
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Status:       string(ticket.Status),
		ActorID:      user.ID,
	})

	database.DB.Preload("Author").Preload("StatusHistory").First(&ticket, "id = ?", ticket.ID)
	services.RedactTicket(&ticket, user)

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// ListTickets returns a filtered, offset-paginated page of tickets the caller
// may see. Ordering is stable under no concurrent writes; the design
// tolerates a concurrently added ticket appearing on a later page.
func ListTickets(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	query := database.DB.Preload("Author").Model(&models.Ticket{})

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
	if ttype := c.Query("type"); ttype != "" {
		parsed, ok := parseTicketType(ttype)
		if !ok {
			respondError(c, apperrors.Validation("unknown type filter: "+ttype))
			return
		}
		query = query.Where("type = ?", parsed)
	}
	if anon := c.Query("isAnonymous"); anon != "" {
		query = query.Where("is_anonymous = ?", anon == "true")
	}

	ownerOnly := c.Query("ownerOnly") == "true"
	if ownerOnly {
		if viewer == nil {
			respondError(c, apperrors.Unauthorized("Sign in to list your own tickets"))
			return
		}
		query = query.Where("author_id = ?", viewer.ID)
	} else if viewer == nil {
		query = query.Where("is_public = ?", true)
	} else if !viewer.Role.IsStaff() {
		query = query.Where("is_public = ? OR author_id = ?", true, viewer.ID)
	}

	// The anonymous first page is the hot path (public feed); cache the
	// already-redacted payload briefly. Personalized pages are never cached.
	cacheable := viewer == nil && offset == 0
	cacheKey := fmt.Sprintf("tickets:feed:%s:%s:%s:%s:%d",
		c.Query("category"), c.Query("status"), c.Query("type"), c.Query("isAnonymous"), limit)
	if cacheable {
		var cached []models.Ticket
		if err := database.CacheGet(cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"tickets": cached, "limit": limit, "offset": offset})
			return
		}
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tickets).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch tickets"))
		return
	}

	if viewer != nil {
		markFollowedTickets(viewer.ID, tickets)
	}
	services.RedactTickets(tickets, viewer)

	if cacheable {
		database.CacheSet(cacheKey, tickets, 30*time.Second)
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "limit": limit, "offset": offset})
}

// markFollowedTickets fills IsFollowing/HasLiked for a page of results with
// two plucks instead of a query per ticket.
func markFollowedTickets(userID string, tickets []models.Ticket) {
	if len(tickets) == 0 {
		return
	}

	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}

	var followed []string
	database.DB.Model(&models.TicketFollow{}).
		Where("user_id = ? AND ticket_id IN ?", userID, ids).
		Pluck("ticket_id", &followed)
	followedMap := make(map[string]bool)
	for _, id := range followed {
		followedMap[id] = true
	}

	var liked []string
	database.DB.Model(&models.TicketLike{}).
		Where("user_id = ? AND ticket_id IN ?", userID, ids).
		Pluck("ticket_id", &liked)
	likedMap := make(map[string]bool)
	for _, id := range liked {
		likedMap[id] = true
	}

	for i := range tickets {
		tickets[i].IsFollowing = followedMap[tickets[i].ID]
		tickets[i].HasLiked = likedMap[tickets[i].ID]
	}
}

// GetTicket resolves by id or CT number, bumps the view counter and applies
// read-time redaction for the caller.
func GetTicket(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	if !services.CanViewTicket(viewer, ticket) {
		// Private ticket: indistinguishable from absent for outsiders.
		respondError(c, apperrors.NotFound("Ticket not found"))
		return
	}

	// Monotonic view counter; losing an increment under a crashed request is
	// acceptable, decrementing never happens.
	database.DB.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	ticket.Views++

	database.DB.Preload("ChangedBy").Where("ticket_id = ?", ticket.ID).
		Order("created_at asc").Find(&ticket.StatusHistory)

	attachEngagementState(database.DB, ticket, viewer)
	services.RedactTicket(ticket, viewer)

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// RateTicket records the author's satisfaction rating. Only allowed once the
// ticket is resolved or closed; re-rating overwrites the stored value.
func RateTicket(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var input struct {
		Value int `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperrors.Validation(err.Error()))
		return
	}
	if input.Value < 1 || input.Value > 5 {
		respondError(c, apperrors.Validation("rating must be between 1 and 5"))
		return
	}

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	if !services.IsAuthor(user, ticket) {
		respondError(c, apperrors.Unauthorized("Only the ticket author can rate the response"))
		return
	}
	if appErr := services.RatingAllowed(ticket); appErr != nil {
		respondError(c, appErr)
		return
	}

	if err := database.DB.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
		Update("rating", input.Value).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to save rating"))
		return
	}
	ticket.Rating = &input.Value

	go database.CacheInvalidate("tickets:*")

	services.RedactTicket(ticket, user)
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
