package repositories

import (
	"fmt"
	"sync"

	"kasuwa/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items  map[string]models.CartItem
	promos map[string]models.AppliedPromo // keyed by user ID
	mu     sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items:  make(map[string]models.CartItem),
		promos: make(map[string]models.AppliedPromo),
	}
}

// GetItems returns a user's cart lines.
func (r *MockCartRepository) GetItems(userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []models.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// Save inserts or updates a cart line.
func (r *MockCartRepository) Save(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

// UpdateQuantity sets the quantity of a cart line.
func (r *MockCartRepository) UpdateQuantity(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("cart item with ID %s not found for update", id)
	}
	item.Quantity = quantity
	r.items[id] = item
	return nil
}

// Remove deletes a cart line.
func (r *MockCartRepository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("cart item with ID %s not found for removal", id)
	}
	delete(r.items, id)
	return nil
}

// Clear deletes every cart line for a user.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}

// GetAppliedPromo returns the promo attached to a user's cart, or nil.
func (r *MockCartRepository) GetAppliedPromo(userID string) (*models.AppliedPromo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	promo, ok := r.promos[userID]
	if !ok {
		return nil, nil
	}
	return &promo, nil
}

// SetAppliedPromo attaches a promo to a user's cart, replacing any previous one.
func (r *MockCartRepository) SetAppliedPromo(promo *models.AppliedPromo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if promo.ID == "" {
		promo.ID = uuid.New().String()
	}
	r.promos[promo.UserID] = *promo
	return nil
}

// ClearAppliedPromo detaches any promo from a user's cart.
func (r *MockCartRepository) ClearAppliedPromo(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.promos, userID)
	return nil
}
