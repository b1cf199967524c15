package repositories

import (
	"kasuwa/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	// CreateWithPayment persists the order, its ledger transaction and, when
	// debitWallet is set, the wallet debit, all in one atomic operation. When
	// the balance cannot cover the order total it returns
	// ErrInsufficientFunds and persists nothing.
	CreateWithPayment(order *models.Order, txn *models.Transaction, debitWallet bool) error
	UpdateStatus(id string, status string) error
	// CountByUser reports how many orders the user has placed. Used for
	// first-time-buyer promo checks.
	CountByUser(userID string) (int64, error)
	// ExistsWithPromo reports whether the user already has an order that
	// referenced the given promo code id.
	ExistsWithPromo(userID, promoCodeID string) (bool, error)
}
