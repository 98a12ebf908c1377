package handlers

import (
	"net/http"
	"strings"

	"github.com/Genocadio/citizen-engagement-backend/internal/database"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/Genocadio/citizen-engagement-backend/internal/services"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// toggleIntent carries the optional desired end state. When omitted the
// operation flips the current state; when present it is idempotent, so a
// double-click that fires two identical requests collapses to one change.
type toggleIntent struct {
	Following *bool `json:"following"`
	Liked     *bool `json:"liked"`
}

// ToggleFollow handles POST /tickets/:id/follow. Returns the updated follower
// count plus the caller's state so the UI needs no follow-up query.
func ToggleFollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var intent toggleIntent
	c.ShouldBindJSON(&intent) // optional body

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	if !services.CanViewTicket(user, ticket) {
		respondError(c, apperrors.NotFound("Ticket not found"))
		return
	}
	if appErr := services.EngagementAllowed(ticket); appErr != nil {
		respondError(c, appErr)
		return
	}
	if services.IsAuthor(user, ticket) {
		respondError(c, apperrors.SelfFollow("You already receive updates for your own ticket"))
		return
	}

	isFollowing := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.TicketFollow
		found := tx.Where("ticket_id = ? AND user_id = ?", ticket.ID, user.ID).
			First(&existing).Error == nil

		want := !found
		if intent.Following != nil {
			want = *intent.Following
		}

		switch {
		case want && !found:
			follow := models.TicketFollow{TicketID: ticket.ID, UserID: user.ID}
			if err := tx.Create(&follow).Error; err != nil {
				// Unique index lost the race to a concurrent duplicate
				// request; the membership already exists, which is the
				// state we wanted.
				if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
					isFollowing = true
					return nil
				}
				return err
			}
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
				UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error; err != nil {
				return err
			}
			isFollowing = true
		case !want && found:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
				UpdateColumn("followers_count", gorm.Expr("CASE WHEN followers_count > 0 THEN followers_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			isFollowing = false
		default:
			// Already in the requested state: no-op, not an error.
			isFollowing = found
		}
		return nil
	})
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update follow state"))
		return
	}

	var count int
	database.DB.Model(&models.Ticket{}).Select("followers_count").
		Where("id = ?", ticket.ID).Scan(&count)

	c.JSON(http.StatusOK, gin.H{"isFollowing": isFollowing, "followerCount": count})
}

// ToggleTicketLike handles POST /tickets/:id/like with the same membership
// semantics as follow, minus the self restriction.
func ToggleTicketLike(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var intent toggleIntent
	c.ShouldBindJSON(&intent)

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	if !services.CanViewTicket(user, ticket) {
		respondError(c, apperrors.NotFound("Ticket not found"))
		return
	}
	if appErr := services.EngagementAllowed(ticket); appErr != nil {
		respondError(c, appErr)
		return
	}

	hasLiked := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.TicketLike
		found := tx.Where("ticket_id = ? AND user_id = ?", ticket.ID, user.ID).
			First(&existing).Error == nil

		want := !found
		if intent.Liked != nil {
			want = *intent.Liked
		}

		switch {
		case want && !found:
			like := models.TicketLike{TicketID: ticket.ID, UserID: user.ID}
			if err := tx.Create(&like).Error; err != nil {
				if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
					hasLiked = true
					return nil
				}
				return err
			}
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			hasLiked = true
		case !want && found:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			hasLiked = false
		default:
			hasLiked = found
		}
		return nil
	})
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update like state"))
		return
	}

	var count int
	database.DB.Model(&models.Ticket{}).Select("likes_count").
		Where("id = ?", ticket.ID).Scan(&count)

	c.JSON(http.StatusOK, gin.H{"hasLiked": hasLiked, "likesCount": count})
}

// ToggleCommentLike handles POST /comments/:id/like.
func ToggleCommentLike(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var intent toggleIntent
	c.ShouldBindJSON(&intent)

	commentID := c.Param("id")
	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		respondError(c, apperrors.NotFound("Comment not found"))
		return
	}

	hasLiked := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		found := tx.Where("comment_id = ? AND user_id = ?", commentID, user.ID).
			First(&existing).Error == nil

		want := !found
		if intent.Liked != nil {
			want = *intent.Liked
		}

		switch {
		case want && !found:
			like := models.CommentLike{CommentID: commentID, UserID: user.ID}
			if err := tx.Create(&like).Error; err != nil {
				if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
					hasLiked = true
					return nil
				}
				return err
			}
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
			hasLiked = true
		case !want && found:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			hasLiked = false
		default:
			hasLiked = found
		}
		return nil
	})
	if err != nil {
		respondError(c, apperrors.Internal("Failed to update like state"))
		return
	}

	var count int
	database.DB.Model(&models.Comment{}).Select("likes_count").
		Where("id = ?", commentID).Scan(&count)

	c.JSON(http.StatusOK, gin.H{"hasLiked": hasLiked, "likesCount": count})
}

// AddComment handles POST /tickets/:id/comments. The author identity and
// timestamp are server-assigned; closed tickets reject new comments.
func AddComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var input struct {
		Message string `json:"message" binding:"required,max=2000"`
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
	if !services.CanViewTicket(user, ticket) {
		respondError(c, apperrors.NotFound("Ticket not found"))
		return
	}
	if appErr := services.EngagementAllowed(ticket); appErr != nil {
		respondError(c, appErr)
		return
	}

	authorType := models.CommentAuthorCitizen
	if user.Role.IsStaff() {
		authorType = models.CommentAuthorAdmin
	}

	comment := models.Comment{
		TicketID:   ticket.ID,
		AuthorID:   user.ID,
		AuthorType: authorType,
		Message:    input.Message,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to post comment"))
		return
	}

	database.DB.Preload("Author").First(&comment, "id = ?", comment.ID)

	go notifyFollowers(ticket, user.ID, models.NotificationTypeComment,
		"New comment on ticket "+ticket.TicketNumber)

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments handles GET /tickets/:id/comments.
func GetComments(c *gin.Context) {
	viewer := middleware.CurrentUser(c)

	ticket, appErr := findTicket(database.DB, c.Param("id"))
	if appErr != nil {
		respondError(c, appErr)
		return
	}
	if !services.CanViewTicket(viewer, ticket) {
		respondError(c, apperrors.NotFound("Ticket not found"))
		return
	}

	var comments []models.Comment
	if err := database.DB.Preload("Author").Where("ticket_id = ?", ticket.ID).
		Order("created_at asc").Find(&comments).Error; err != nil {
		respondError(c, apperrors.Internal("Failed to fetch comments"))
		return
	}

	if viewer != nil && len(comments) > 0 {
		ids := make([]string, len(comments))
		for i, cm := range comments {
			ids[i] = cm.ID
		}
		var liked []string
		database.DB.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewer.ID, ids).
			Pluck("comment_id", &liked)
		likedMap := make(map[string]bool)
		for _, id := range liked {
			likedMap[id] = true
		}
		for i := range comments {
			comments[i].HasLiked = likedMap[comments[i].ID]
		}
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
