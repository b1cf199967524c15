package repositories

import (
	"fmt"
	"sync"
	"time"

	"kasuwa/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders   map[string]models.Order
	profiles *MockProfileRepository
	txns     *MockTransactionRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
// profiles and txns back the atomic wallet-payment path; either may be nil
// for tests that never pay by wallet.
func NewMockOrderRepository(profiles *MockProfileRepository, txns *MockTransactionRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		profiles: profiles,
		txns:     txns,
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByUser returns a user's orders.
func (r *MockOrderRepository) GetByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

// CreateWithPayment adds a new order with its ledger entry, debiting the
// wallet first when requested. An insufficient balance persists nothing.
func (r *MockOrderRepository) CreateWithPayment(order *models.Order, txn *models.Transaction, debitWallet bool) error {
	if debitWallet {
		if r.profiles == nil {
			return fmt.Errorf("mock order repository has no profile repository for wallet debit")
		}
		if err := r.profiles.debit(order.UserID, txn.Amount); err != nil {
			return err
		}
	}
	if txn != nil && r.txns != nil {
		if err := r.txns.Append(txn); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the fulfillment status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// CountByUser reports how many orders the user has placed.
func (r *MockOrderRepository) CountByUser(userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, order := range r.orders {
		if order.UserID == userID {
			count++
		}
	}
	return count, nil
}

// ExistsWithPromo reports whether the user already has an order referencing
// the promo code.
func (r *MockOrderRepository) ExistsWithPromo(userID, promoCodeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.UserID == userID && order.PromoCodeID == promoCodeID {
			return true, nil
		}
	}
	return false, nil
}
