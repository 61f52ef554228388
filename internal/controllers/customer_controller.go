package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"waste_tracker/internal/config"
	"waste_tracker/internal/middleware"
	"waste_tracker/internal/models"
)

type customerView struct {
	models.CustomerInfo
	GeoJSON string `json:"location,omitempty"`
}

// AssignedCustomers lists the customers assigned to the acting collector.
func AssignedCustomers(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)

	var customers []models.CustomerInfo
	err := config.DB.WithContext(c.Request.Context()).
		Where("assigned_collector_id = ?", p.UserID).
		Preload("LocalBody").
		Order("name").
		Find(&customers).Error
	if err != nil {
		serverError(c, err, "could not load assigned customers")
		return
	}

	views := make([]customerView, 0, len(customers))
	for _, cust := range customers {
		v := customerView{CustomerInfo: cust}
		if geo, err := convertWKBToGeoJSON(cust.Location); err != nil {
			logrus.WithError(err).WithField("customer_id", cust.ID).Warn("unreadable customer location")
		} else {
			v.GeoJSON = geo
		}
		views = append(views, v)
	}

	render(c, http.StatusOK, "assigned_customers_details.html", gin.H{"assigned_customers": views})
}
