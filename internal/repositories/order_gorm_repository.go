package repositories

import (
	"fmt"
	"time"

	"kasuwa/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByUser retrieves a user's orders, newest first.
func (r *GORMOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// CreateWithPayment persists the order, its ledger entry and (for wallet
// payments) the balance debit in one database transaction, so a failure at
// any step leaves no partial state behind.
func (r *GORMOrderRepository) CreateWithPayment(order *models.Order, txn *models.Transaction, debitWallet bool) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if txn != nil && txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if debitWallet {
			var profile models.Profile
			if err := tx.First(&profile, "user_id = ?", order.UserID).Error; err != nil {
				return fmt.Errorf("profile for user %s not found: %w", order.UserID, err)
			}
			if profile.WalletBalance < txn.Amount {
				return ErrInsufficientFunds
			}
			res := tx.Model(&models.Profile{}).Where("user_id = ?", order.UserID).
				Update("wallet_balance", gorm.Expr("wallet_balance - ?", txn.Amount))
			if res.Error != nil {
				return res.Error
			}
		}
		if txn != nil {
			if err := tx.Create(txn).Error; err != nil {
				return err
			}
		}
		return tx.Create(order).Error
	})
	if err == ErrInsufficientFunds {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the fulfillment status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	return nil
}

// CountByUser reports how many orders the user has placed.
func (r *GORMOrderRepository) CountByUser(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders for user %s: %w", userID, err)
	}
	return count, nil
}

// ExistsWithPromo reports whether the user already has an order referencing
// the promo code.
func (r *GORMOrderRepository) ExistsWithPromo(userID, promoCodeID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND promo_code_id = ?", userID, promoCodeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check promo usage for user %s: %w", userID, err)
	}
	return count > 0, nil
}
