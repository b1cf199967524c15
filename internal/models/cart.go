package models

import "gorm.io/gorm"

// CartItem is one line in a shopper's cart. Identity is the
// (ProductID, Size, Color) tuple: adding a matching variant again
// increments Quantity instead of creating a second line.
type CartItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string  `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // unit price in base currency at add time
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Size      string  `json:"size" gorm:"type:varchar(20)"`
	Color     string  `json:"color" gorm:"type:varchar(50)"`
	gorm.Model
}

// SameVariant reports whether other refers to the same cart line identity.
func (c *CartItem) SameVariant(other *CartItem) bool {
	return c.ProductID == other.ProductID && c.Size == other.Size && c.Color == other.Color
}

// AppliedPromo is a promo code attached to a cart. At most one per cart.
// It is never trusted from a prior validation: it must pass re-validation
// on cart load and again immediately before checkout.
type AppliedPromo struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string  `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	PromoCodeID string  `json:"promo_code_id" gorm:"type:varchar(36)"`
	Code        string  `json:"code" gorm:"type:varchar(50)"`
	Discount    float64 `json:"discount"` // fraction in [0,1]
	Description string  `json:"description"`
	gorm.Model
}
