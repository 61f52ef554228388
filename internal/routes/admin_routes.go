package routes

import (
	"github.com/gin-gonic/gin"

	"waste_tracker/internal/controllers"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/models"
	"waste_tracker/internal/urls"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET(urls.Pattern(urls.AdminLocalBodies), controllers.ListLocalBodies)
		admin.POST(urls.Pattern(urls.AdminLocalBodies), controllers.CreateLocalBody)
		admin.POST(urls.Pattern(urls.AdminAssignCollector), controllers.AssignCollector)
		admin.POST(urls.Pattern(urls.AdminUsers), controllers.CreateUser)
	}
}
