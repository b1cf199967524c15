package repositories

import "kasuwa/internal/models"

// TransactionRepository defines the interface for the append-only ledger.
// Entries are never updated or deleted.
type TransactionRepository interface {
	Append(txn *models.Transaction) error
	GetByUser(userID string) ([]models.Transaction, error)
	GetByReference(reference string) (*models.Transaction, error)
}
