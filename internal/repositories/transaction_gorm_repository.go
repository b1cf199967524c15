package repositories

import (
	"fmt"

	"kasuwa/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// Append inserts a new ledger entry. Entries are never updated or deleted.
func (r *GORMTransactionRepository) Append(txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if err := r.db.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// GetByUser retrieves a user's ledger entries, newest first.
func (r *GORMTransactionRepository) GetByUser(userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %s: %w", userID, err)
	}
	return txns, nil
}

// GetByReference retrieves a ledger entry by its reference string.
func (r *GORMTransactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, "reference = ?", reference).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("transaction with reference %s not found", reference)
		}
		return nil, fmt.Errorf("failed to get transaction by reference %s: %w", reference, err)
	}
	return &txn, nil
}
