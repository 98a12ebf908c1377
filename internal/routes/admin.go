package routes

import (
	"github.com/Genocadio/citizen-engagement-backend/internal/handlers"
	"github.com/Genocadio/citizen-engagement-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.StaffOnly())
	{
		admin.GET("/tickets", handlers.AdminListTickets)
		admin.GET("/dashboard", handlers.AdminDashboard)
	}

	super := r.Group("/admin")
	super.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		super.GET("/audit-log", handlers.AdminGetAuditLog)
		super.GET("/users", handlers.AdminListUsers)
		super.PATCH("/users/:id/role", handlers.AdminSetUserRole)
	}
}
