package models

import (
	"gorm.io/gorm"
)

// CustomerInfo is a household or business that a collector visits.
type CustomerInfo struct {
	gorm.Model
	UserID  *uint  `json:"user_id" gorm:"uniqueIndex"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	LocalBodyID *uint      `json:"local_body_id" gorm:"index"`
	LocalBody   *LocalBody `gorm:"foreignKey:LocalBodyID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"local_body,omitempty"`

	AssignedCollectorID *uint `json:"assigned_collector_id" gorm:"index"`
	AssignedCollector   *User `gorm:"foreignKey:AssignedCollectorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Pickup point stored as WKB (SRID 4326); rendered as GeoJSON.
	Location []byte `gorm:"type:bytea" json:"-"`
}
