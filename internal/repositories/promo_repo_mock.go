package repositories

import (
	"fmt"
	"sync"

	"kasuwa/internal/models"

	"github.com/google/uuid"
)

// MockPromoRepository is an in-memory implementation of PromoRepository.
type MockPromoRepository struct {
	promos map[string]models.PromoCode
	mu     sync.RWMutex
}

// NewMockPromoRepository creates a new instance of MockPromoRepository.
func NewMockPromoRepository() *MockPromoRepository {
	return &MockPromoRepository{
		promos: make(map[string]models.PromoCode),
	}
}

// GetAll returns all promo codes.
func (r *MockPromoRepository) GetAll() ([]models.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	promoList := make([]models.PromoCode, 0, len(r.promos))
	for _, p := range r.promos {
		promoList = append(promoList, p)
	}
	return promoList, nil
}

// GetByID returns a promo code by its ID.
func (r *MockPromoRepository) GetByID(id string) (*models.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	promo, ok := r.promos[id]
	if !ok {
		return nil, fmt.Errorf("promo code with ID %s not found", id)
	}
	return &promo, nil
}

// GetByCode returns a promo code by its code string.
func (r *MockPromoRepository) GetByCode(code string) (*models.PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.promos {
		if p.Code == code {
			promo := p
			return &promo, nil
		}
	}
	return nil, fmt.Errorf("promo code %s not found", code)
}

// Create adds a new promo code.
func (r *MockPromoRepository) Create(promo *models.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if promo.ID == "" {
		promo.ID = uuid.New().String()
	}
	r.promos[promo.ID] = *promo
	return nil
}

// Update modifies an existing promo code.
func (r *MockPromoRepository) Update(promo *models.PromoCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.promos[promo.ID]
	if !ok {
		return fmt.Errorf("promo code with ID %s not found for update", promo.ID)
	}
	r.promos[promo.ID] = *promo
	return nil
}

// IncrementUsage bumps the usage count of a promo code.
func (r *MockPromoRepository) IncrementUsage(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	promo, ok := r.promos[id]
	if !ok {
		return fmt.Errorf("promo code with ID %s not found for usage increment", id)
	}
	promo.UsageCount++
	r.promos[id] = promo
	return nil
}
