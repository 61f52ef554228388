package routes

import (
	"github.com/gin-gonic/gin"

	"waste_tracker/internal/controllers"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/urls"
)

// CollectorRoutes installs the waste-collector pages. Every one of them sits
// behind the collector guard.
func CollectorRoutes(r *gin.Engine) {
	collector := r.Group("/")
	collector.Use(middleware.RequireCollector())
	{
		collector.GET(urls.Pattern(urls.Dashboard), controllers.Dashboard)
		collector.GET(urls.Pattern(urls.CollectionList), controllers.CollectionList)
		collector.GET(urls.Pattern(urls.AssignedCustomers), controllers.AssignedCustomers)

		collector.GET(urls.Pattern(urls.CollectionCreate), controllers.CreateCollection)
		collector.POST(urls.Pattern(urls.CollectionCreate), controllers.CreateCollection)
		collector.GET(urls.Pattern(urls.CollectionUpdate), controllers.UpdateCollection)
		collector.POST(urls.Pattern(urls.CollectionUpdate), controllers.UpdateCollection)
		collector.GET(urls.Pattern(urls.CollectionDelete), controllers.DeleteCollection)
		collector.POST(urls.Pattern(urls.CollectionDelete), controllers.DeleteCollection)
	}
}
