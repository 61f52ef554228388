package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"waste_tracker/internal/models"
	"waste_tracker/internal/urls"
)

const principalKey = "principal"

// Principal is the acting user as established by Authenticate.
type Principal struct {
	UserID uint
	Role   models.Role
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// IsCollector is the access check every collector handler depends on.
func IsCollector(p Principal) bool {
	return p.Authenticated() && p.Role == models.RoleCollector
}

// CurrentPrincipal returns the anonymous principal when nobody is signed in.
func CurrentPrincipal(c *gin.Context) Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Principal{}
}

// SetPrincipal is used by Authenticate and by tests.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// RequireRole redirects to login unless the principal holds role.
// Anonymous and wrong-role requests get the same redirect.
func RequireRole(role models.Role) gin.HandlerFunc {
	return guard(func(p Principal) bool {
		return p.Authenticated() && p.Role == role
	})
}

// RequireCollector is RequireRole(RoleCollector) spelled through IsCollector.
func RequireCollector() gin.HandlerFunc {
	return guard(IsCollector)
}

// RequireLogin only asks for an authenticated principal.
func RequireLogin() gin.HandlerFunc {
	return guard(Principal.Authenticated)
}

func guard(allowed func(Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if !allowed(p) {
			logrus.WithFields(logrus.Fields{
				"user_id": p.UserID,
				"role":    p.Role.String(),
				"path":    c.Request.URL.Path,
			}).Debug("access denied, redirecting to login")
			c.Redirect(http.StatusFound, urls.Path(urls.Login))
			c.Abort()
			return
		}
		c.Next()
	}
}
