package repositories

import "kasuwa/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}

// ProfileRepository defines the interface for profile data access. Wallet
// mutation goes through the atomic credit/debit operations only.
type ProfileRepository interface {
	Create(profile *models.Profile) error
	GetByUserID(userID string) (*models.Profile, error)
	Update(profile *models.Profile) error
	// CreditWallet increases the balance and appends the credit transaction
	// in a single atomic operation.
	CreditWallet(userID string, amount float64, txn *models.Transaction) error
}
