package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"waste_tracker/internal/urls"
)

// render answers with the named template, or with the same data as JSON when
// the client asks for it.
func render(c *gin.Context, code int, name string, data gin.H) {
	c.Negotiate(code, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: name,
		HTMLData: data,
		JSONData: data,
	})
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON ||
		c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) == binding.MIMEJSON
}

// redirectTo sends the client to a named route after a successful POST.
func redirectTo(c *gin.Context, name string, args ...any) {
	c.Redirect(http.StatusSeeOther, urls.Path(name, args...))
}

// notFound does not distinguish missing records from other collectors' records.
func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "error.html", gin.H{"status": http.StatusNotFound, "error": "not found"})
}

func serverError(c *gin.Context, err error, msg string) {
	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error(msg)
	render(c, http.StatusInternalServerError, "error.html", gin.H{
		"status": http.StatusInternalServerError,
		"error":  msg,
	})
}
