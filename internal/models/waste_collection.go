package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Largest values the numeric(10,2) and numeric(12,2) columns hold.
var (
	MaxKg          = decimal.RequireFromString("99999999.99")
	MaxTotalAmount = decimal.RequireFromString("9999999999.99")
)

// WasteCollection is a single pickup logged by a collector.
type WasteCollection struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CollectorID uint  `json:"collector_id" gorm:"not null;index"`
	Collector   *User `gorm:"foreignKey:CollectorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	CustomerID *uint         `json:"customer_id" gorm:"index"`
	Customer   *CustomerInfo `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"customer,omitempty"`

	LocalBodyID *uint      `json:"local_body_id" gorm:"index"`
	LocalBody   *LocalBody `gorm:"foreignKey:LocalBodyID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"local_body,omitempty"`

	Kg          decimal.Decimal `json:"kg" gorm:"type:numeric(10,2);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Photo       string          `json:"photo,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index;<-:create"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyPricing recomputes TotalAmount from Kg. Call before every save.
func (w *WasteCollection) ApplyPricing(unitPrice decimal.Decimal) {
	w.TotalAmount = w.Kg.Mul(unitPrice).Round(2)
}
