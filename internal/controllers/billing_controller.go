package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"waste_tracker/internal/billing"
	"waste_tracker/internal/config"
)

// timeNow is replaced in tests to pin the billing month.
var timeNow = time.Now

// BillingDashboard shows this month's totals across every collector.
func BillingDashboard(c *gin.Context) {
	loc := config.App.Location
	if loc == nil {
		loc = time.Local
	}

	summary, err := billing.MonthlySummary(c.Request.Context(), config.DB, timeNow(), loc)
	if err != nil {
		serverError(c, err, "could not compute billing summary")
		return
	}

	render(c, http.StatusOK, "billing_dashboard.html", gin.H{
		"total_weight":     summary.TotalWeight,
		"total_revenue":    summary.TotalRevenue,
		"collection_count": summary.CollectionCount,
		"localbody_stats":  summary.Groups,
		"chart_data":       summary.ChartData(),
		"current_month":    summary.MonthLabel,
	})
}
