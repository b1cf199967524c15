package repositories

import "kasuwa/internal/models"

// PromoRepository defines the interface for promo code data access.
type PromoRepository interface {
	GetAll() ([]models.PromoCode, error)
	GetByID(id string) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	Create(promo *models.PromoCode) error
	Update(promo *models.PromoCode) error
	// IncrementUsage bumps the usage count once an order referencing the
	// promo completes.
	IncrementUsage(id string) error
}
