package repositories

import (
	"fmt"

	"kasuwa/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetItems retrieves a user's cart lines.
func (r *GORMCartRepository) GetItems(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return items, nil
}

// Save inserts or updates a cart line.
func (r *GORMCartRepository) Save(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart line.
func (r *GORMCartRepository) UpdateQuantity(id string, quantity int) error {
	res := r.db.Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for update", id)
	}
	return nil
}

// Remove deletes a cart line.
func (r *GORMCartRepository) Remove(id string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for removal", id)
	}
	return nil
}

// Clear deletes every cart line for a user.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}

// GetAppliedPromo retrieves the promo attached to a user's cart, or nil when
// none is attached.
func (r *GORMCartRepository) GetAppliedPromo(userID string) (*models.AppliedPromo, error) {
	var promo models.AppliedPromo
	if err := r.db.First(&promo, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applied promo for user %s: %w", userID, err)
	}
	return &promo, nil
}

// SetAppliedPromo attaches a promo to a user's cart, replacing any previous
// one. At most one promo per cart.
func (r *GORMCartRepository) SetAppliedPromo(promo *models.AppliedPromo) error {
	if promo.ID == "" {
		promo.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.AppliedPromo{}, "user_id = ?", promo.UserID).Error; err != nil {
			return err
		}
		return tx.Create(promo).Error
	})
	if err != nil {
		return fmt.Errorf("failed to set applied promo for user %s: %w", promo.UserID, err)
	}
	return nil
}

// ClearAppliedPromo detaches any promo from a user's cart.
func (r *GORMCartRepository) ClearAppliedPromo(userID string) error {
	if err := r.db.Unscoped().Delete(&models.AppliedPromo{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear applied promo for user %s: %w", userID, err)
	}
	return nil
}
