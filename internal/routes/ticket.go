package routes

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/handlers"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterTicketRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")

	// Public reads (optional auth for redaction and follow/like state)
	tickets.GET("", middleware.OptionalAuthMiddleware(), handlers.ListTickets)
	tickets.GET("/:id", middleware.OptionalAuthMiddleware(), handlers.GetTicket)
	tickets.GET("/:id/comments", middleware.OptionalAuthMiddleware(), handlers.GetComments)

	// Citizen actions
	protected := tickets.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("", middleware.SubmitRateLimit(), handlers.CreateTicket)
		protected.POST("/:id/rate", handlers.RateTicket)
		protected.POST("/:id/follow", handlers.ToggleFollow)
		protected.POST("/:id/like", handlers.ToggleTicketLike)
		protected.POST("/:id/comments", handlers.AddComment)
	}

	// Staff actions. Category scoping is enforced per ticket in the policy
	// layer.
	staff := tickets.Group("")
	staff.Use(middleware.AuthMiddleware(), middleware.StaffOnly())
	{
		staff.PATCH("/:id/status", handlers.ChangeStatus)
		staff.POST("/:id/response", handlers.AddResponse)
		staff.POST("/:id/assign", handlers.AssignTicket)
	}

	comments := r.Group("/comments")
	{
		protected := comments.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/:id/like", handlers.ToggleCommentLike)
		}
	}
}
