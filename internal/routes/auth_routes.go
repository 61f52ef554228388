package routes

import (
	"github.com/gin-gonic/gin"

	"waste_tracker/internal/controllers"
	"waste_tracker/internal/urls"
)

func AuthRoutes(r *gin.Engine) {
	r.GET(urls.Pattern(urls.Login), controllers.LoginPage)
	r.POST(urls.Pattern(urls.Login), controllers.LoginUser)
	r.POST(urls.Pattern(urls.Logout), controllers.LogoutUser)
	r.POST(urls.Pattern(urls.Signup), controllers.SignupUser)
}
