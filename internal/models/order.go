package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses for an order.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Fulfillment statuses for an order.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment method tags recorded on orders and transactions.
const (
	MethodWallet      = "wallet"
	MethodPaystack    = "paystack"
	MethodFlutterwave = "flutterwave"
)

// OrderItem is a snapshot of one cart line at checkout time.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"` // unit price in base currency at order time
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size" gorm:"type:varchar(20)"`
	Color     string  `json:"color" gorm:"type:varchar(50)"`
}

// Order is a customer order. Subtotal, ServiceFee, DeliveryFee, Discount and
// Total are authoritative in the base currency; Currency records what the
// payment actually settled in, with OriginalAmount holding the settled figure
// when that currency is not the base one.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal        float64     `json:"subtotal"`
	ServiceFee      float64     `json:"service_fee"`
	DeliveryFee     float64     `json:"delivery_fee"`
	Discount        float64     `json:"discount"`
	Total           float64     `json:"total"`
	Currency        string      `json:"currency" gorm:"type:varchar(3)"`
	OriginalAmount  float64     `json:"original_amount"` // settled amount when Currency != base
	PaymentMethod   string      `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentStatus   string      `json:"payment_status" gorm:"type:varchar(20)"`
	PaymentRef      string      `json:"payment_ref" gorm:"type:varchar(100)"`
	Status          string      `json:"status" gorm:"type:varchar(20)"` // fulfillment
	PromoCodeID     string      `json:"promo_code_id" gorm:"index;type:varchar(36)"`
	DeliveryAddress string      `json:"delivery_address" gorm:"type:varchar(500)"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ValidOrderStatus reports whether s is a known fulfillment status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Transaction is one append-only ledger entry. Never mutated after creation.
type Transaction struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string  `json:"user_id" gorm:"index;type:varchar(36)"`
	Direction      string  `json:"direction" gorm:"type:varchar(10)"` // credit | debit
	Amount         float64 `json:"amount"`                            // base currency
	Currency       string  `json:"currency" gorm:"type:varchar(3)"`
	OriginalAmount float64 `json:"original_amount"` // settled amount when Currency != base
	Description    string  `json:"description"`
	Reference      string  `json:"reference" gorm:"type:varchar(100)"` // provider ref or internal order/invoice id
	Status         string  `json:"status" gorm:"type:varchar(20)"`
	Provider       string  `json:"provider" gorm:"type:varchar(20)"` // wallet | paystack | flutterwave
	gorm.Model
}

// Transaction directions.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)
