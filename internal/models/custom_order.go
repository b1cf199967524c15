package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomOrderRequest statuses.
const (
	RequestUnderReview = "under_review"
	RequestQuoted      = "quoted"
	RequestAccepted    = "accepted"
	RequestRejected    = "rejected"
	RequestPaymentMade = "payment_made"
	RequestCompleted   = "completed"
)

// Invoice statuses. An invoice moves in lockstep with its request:
// sent -> {accepted|rejected}, accepted -> paid.
const (
	InvoiceSent     = "sent"
	InvoiceAccepted = "accepted"
	InvoiceRejected = "rejected"
	InvoicePaid     = "paid"
)

// CustomOrderRequest is a shopper's bespoke order submission.
type CustomOrderRequest struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"index;type:varchar(36)"`
	Title       string    `json:"title" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"required,max=2000"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
	BudgetRange string    `json:"budget_range" gorm:"type:varchar(100)"` // display string, not a structured amount
	Status      string    `json:"status" gorm:"type:varchar(20)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Invoice is a priced quote attached to exactly one CustomOrderRequest.
// Amount is base currency; OriginalAmount/Currency record the quoted figure
// when the quote was issued in another currency. Immutable once paid.
type Invoice struct {
	ID             string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RequestID      string  `json:"request_id" gorm:"uniqueIndex;type:varchar(36)"`
	Amount         float64 `json:"amount"` // base currency
	Currency       string  `json:"currency" gorm:"type:varchar(3)"`
	OriginalAmount float64 `json:"original_amount"`
	Description    string  `json:"description"`
	Status         string  `json:"status" gorm:"type:varchar(20)"`
	PaymentMethod  string  `json:"payment_method" gorm:"type:varchar(20)"`
	PaymentRef     string  `json:"payment_ref" gorm:"type:varchar(100)"`
	gorm.Model
}

// DisplayAmount returns the figure a shopper should be shown: the quoted
// original amount and currency when present, the base amount otherwise.
func (i *Invoice) DisplayAmount() (float64, string) {
	if i.Currency != "" && i.OriginalAmount != 0 {
		return i.OriginalAmount, i.Currency
	}
	return i.Amount, "NGN"
}
