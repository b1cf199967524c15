package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode is the server-side discount code record. Codes are retired by
// clearing Active, never hard-deleted.
type PromoCode struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Code               string     `json:"code" gorm:"uniqueIndex;type:varchar(50)" validate:"required,min=2,max=50"`
	Description        string     `json:"description" validate:"omitempty,max=200"`
	Active             bool       `json:"active"`
	DiscountPercentage float64    `json:"discount_percentage" validate:"required,gt=0,lte=100"`
	MinOrderAmount     float64    `json:"min_order_amount" validate:"gte=0"` // base currency; 0 = no minimum
	MaxUsageCount      int        `json:"max_usage_count" validate:"gte=0"`  // 0 = uncapped
	UsageCount         int        `json:"usage_count"`
	FirstTimeOnly      bool       `json:"first_time_only"`
	StartsAt           *time.Time `json:"starts_at"`
	ExpiresAt          *time.Time `json:"expires_at"`
	gorm.Model
}
