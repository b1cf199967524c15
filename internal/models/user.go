package models

import "gorm.io/gorm"

// Roles a user account can hold.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account that can sign in to the store.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(20);default:customer" validate:"omitempty,oneof=customer admin"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Profile carries the per-user shopping state that outlives a session.
// WalletBalance is always held in the base currency (NGN), whatever
// DisplayCurrency the user prefers on screen.
type Profile struct {
	ID              string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string  `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	WalletBalance   float64 `json:"wallet_balance"`
	DisplayCurrency string  `json:"display_currency" gorm:"type:varchar(3);default:NGN"`
	DeliveryAddress string  `json:"delivery_address" gorm:"type:varchar(500)"`
	gorm.Model
}
