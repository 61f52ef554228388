package routes

import (
	"github.com/gin-gonic/gin"

	"waste_tracker/internal/controllers"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/urls"
)

// BillingRoutes needs a session but no particular role.
func BillingRoutes(r *gin.Engine) {
	r.GET(urls.Pattern(urls.BillingDashboard), middleware.RequireLogin(), controllers.BillingDashboard)
}
