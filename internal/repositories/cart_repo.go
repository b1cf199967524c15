package repositories

import "kasuwa/internal/models"

// CartRepository defines the interface for per-user cart data access.
type CartRepository interface {
	GetItems(userID string) ([]models.CartItem, error)
	Save(item *models.CartItem) error
	UpdateQuantity(id string, quantity int) error
	Remove(id string) error
	Clear(userID string) error

	GetAppliedPromo(userID string) (*models.AppliedPromo, error)
	SetAppliedPromo(promo *models.AppliedPromo) error
	ClearAppliedPromo(userID string) error
}
