package models

import "gorm.io/gorm"

// LocalBody is the municipal region a pickup or customer belongs to.
// Billing reports group by its name.
type LocalBody struct {
	gorm.Model
	Name     string `json:"name" gorm:"uniqueIndex;not null" binding:"required"`
	District string `json:"district"`
}
