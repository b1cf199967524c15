package repositories

import (
	"fmt"

	"kasuwa/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPromoRepository is a GORM implementation of PromoRepository.
type GORMPromoRepository struct {
	db *gorm.DB
}

// NewGORMPromoRepository creates a new instance of GORMPromoRepository.
func NewGORMPromoRepository(db *gorm.DB) *GORMPromoRepository {
	return &GORMPromoRepository{
		db: db,
	}
}

// GetAll retrieves all promo codes.
func (r *GORMPromoRepository) GetAll() ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := r.db.Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("failed to get all promo codes: %w", err)
	}
	return promos, nil
}

// GetByID retrieves a promo code by its ID.
func (r *GORMPromoRepository) GetByID(id string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("promo code with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get promo code by ID %s: %w", id, err)
	}
	return &promo, nil
}

// GetByCode retrieves a promo code by its code string.
func (r *GORMPromoRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("promo code %s not found", code)
		}
		return nil, fmt.Errorf("failed to get promo code %s: %w", code, err)
	}
	return &promo, nil
}

// Create creates a new promo code.
func (r *GORMPromoRepository) Create(promo *models.PromoCode) error {
	if promo.ID == "" {
		promo.ID = uuid.New().String()
	}
	if err := r.db.Create(promo).Error; err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// Update updates an existing promo code. Retirement is Update with
// Active=false; promo codes are never hard-deleted.
func (r *GORMPromoRepository) Update(promo *models.PromoCode) error {
	res := r.db.Save(promo)
	if res.Error != nil {
		return fmt.Errorf("failed to update promo code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("promo code with ID %s not found for update", promo.ID)
	}
	return nil
}

// IncrementUsage bumps the usage count of a promo code.
func (r *GORMPromoRepository) IncrementUsage(id string) error {
	res := r.db.Model(&models.PromoCode{}).Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment usage for promo %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("promo code with ID %s not found for usage increment", id)
	}
	return nil
}
