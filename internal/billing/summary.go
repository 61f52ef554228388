// Package billing aggregates collection records into the monthly report
// shown on the billing dashboard. The report covers every collector.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"waste_tracker/internal/models"
)

// Group is one local body's share of the month.
type Group struct {
	LocalBody    string          `json:"localbody"`
	TotalWeight  decimal.Decimal `json:"total_weight"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Count        int64           `json:"count"`
}

// ChartPoint is a Group flattened to floats for the dashboard chart.
type ChartPoint struct {
	LocalBody   string  `json:"localbody"`
	Weight      float64 `json:"weight"`
	Revenue     float64 `json:"revenue"`
	Collections int64   `json:"collections"`
}

type Summary struct {
	Start           time.Time       `json:"start"`
	End             time.Time       `json:"end"`
	MonthLabel      string          `json:"current_month"`
	TotalWeight     decimal.Decimal `json:"total_weight"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	CollectionCount int64           `json:"collection_count"`
	Groups          []Group         `json:"localbody_stats"`
}

type totalsRow struct {
	TotalWeight     decimal.Decimal
	TotalRevenue    decimal.Decimal
	CollectionCount int64
}

// MonthStart is midnight on the first day of now's month in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// MonthlySummary totals every record created between the start of the
// current month and now. Zero records yield zero totals and no groups.
func MonthlySummary(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location) (Summary, error) {
	start := MonthStart(now, loc)
	summary := Summary{
		Start:        start,
		End:          now.In(loc),
		MonthLabel:   now.In(loc).Format("January 2006"),
		TotalWeight:  decimal.Zero,
		TotalRevenue: decimal.Zero,
		Groups:       []Group{},
	}

	window := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&models.WasteCollection{}).
			Where("waste_collections.created_at >= ? AND waste_collections.created_at <= ?", start.UTC(), now.UTC())
	}

	var totals totalsRow
	err := window().
		Select("COALESCE(SUM(waste_collections.kg), 0) AS total_weight, " +
			"COALESCE(SUM(waste_collections.total_amount), 0) AS total_revenue, " +
			"COUNT(*) AS collection_count").
		Scan(&totals).Error
	if err != nil {
		return summary, fmt.Errorf("monthly totals: %w", err)
	}
	summary.TotalWeight = totals.TotalWeight
	summary.TotalRevenue = totals.TotalRevenue
	summary.CollectionCount = totals.CollectionCount

	var groups []Group
	err = window().
		Select("COALESCE(local_bodies.name, '') AS local_body, " +
			"SUM(waste_collections.kg) AS total_weight, " +
			"SUM(waste_collections.total_amount) AS total_revenue, " +
			"COUNT(waste_collections.id) AS count").
		Joins("LEFT JOIN local_bodies ON local_bodies.id = waste_collections.local_body_id").
		Group("COALESCE(local_bodies.name, '')").
		Order("total_revenue DESC, local_body ASC").
		Scan(&groups).Error
	if err != nil {
		return summary, fmt.Errorf("monthly groups: %w", err)
	}
	if groups != nil {
		summary.Groups = groups
	}
	return summary, nil
}

// ChartData flattens the groups for the dashboard chart.
func (s Summary) ChartData() []ChartPoint {
	points := make([]ChartPoint, 0, len(s.Groups))
	for _, g := range s.Groups {
		points = append(points, ChartPoint{
			LocalBody:   g.LocalBody,
			Weight:      g.TotalWeight.InexactFloat64(),
			Revenue:     g.TotalRevenue.InexactFloat64(),
			Collections: g.Count,
		})
	}
	return points
}
