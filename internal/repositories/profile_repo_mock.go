package repositories

import (
	"fmt"
	"sync"

	"kasuwa/internal/models"

	"github.com/google/uuid"
)

// MockProfileRepository is an in-memory implementation of ProfileRepository.
// It also backs the wallet debits of the mock order and custom order
// repositories, so scenario tests observe a single consistent balance.
type MockProfileRepository struct {
	profiles map[string]models.Profile // keyed by user ID
	txns     *MockTransactionRepository
	mu       sync.Mutex
}

// NewMockProfileRepository creates a new instance of MockProfileRepository.
// The transaction repository receives the ledger entry of every atomic
// credit; it may be nil.
func NewMockProfileRepository(txns *MockTransactionRepository) *MockProfileRepository {
	return &MockProfileRepository{
		profiles: make(map[string]models.Profile),
		txns:     txns,
	}
}

// Create adds a new profile.
func (r *MockProfileRepository) Create(profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.DisplayCurrency == "" {
		profile.DisplayCurrency = "NGN"
	}
	r.profiles[profile.UserID] = *profile
	return nil
}

// GetByUserID returns the profile belonging to a user.
func (r *MockProfileRepository) GetByUserID(userID string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s not found", userID)
	}
	return &profile, nil
}

// Update modifies profile preferences, leaving the wallet balance untouched.
func (r *MockProfileRepository) Update(profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.profiles[profile.UserID]
	if !ok {
		return fmt.Errorf("profile with ID %s not found for update", profile.ID)
	}
	existing.DisplayCurrency = profile.DisplayCurrency
	existing.DeliveryAddress = profile.DeliveryAddress
	r.profiles[profile.UserID] = existing
	return nil
}

// CreditWallet increases the balance and appends the credit transaction.
func (r *MockProfileRepository) CreditWallet(userID string, amount float64, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	profile.WalletBalance += amount
	r.profiles[userID] = profile
	if r.txns != nil {
		return r.txns.Append(txn)
	}
	return nil
}

// debit decreases the balance after a covered-funds check. Used by the other
// mock repositories to emulate the atomic wallet operations.
func (r *MockProfileRepository) debit(userID string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	if profile.WalletBalance < amount {
		return ErrInsufficientFunds
	}
	profile.WalletBalance -= amount
	r.profiles[userID] = profile
	return nil
}

// MockTransactionRepository is an in-memory implementation of TransactionRepository.
type MockTransactionRepository struct {
	txns []models.Transaction
	mu   sync.RWMutex
}

// NewMockTransactionRepository creates a new instance of MockTransactionRepository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// Append inserts a new ledger entry.
func (r *MockTransactionRepository) Append(txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	r.txns = append(r.txns, *txn)
	return nil
}

// GetByUser returns a user's ledger entries.
func (r *MockTransactionRepository) GetByUser(userID string) ([]models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Transaction
	for _, t := range r.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetByReference returns a ledger entry by its reference string.
func (r *MockTransactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.txns {
		if t.Reference == reference {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("transaction with reference %s not found", reference)
}
