package services

import (
	"fmt"

	"kasuwa/internal/currency"
	"kasuwa/internal/models"
	"kasuwa/internal/pricing"
	"kasuwa/internal/repositories"
)

// Cart is a shopper's cart as returned to handlers: the lines, the promo
// that survived re-validation (nil when none), and a notice when a stale
// promo was silently detached.
type Cart struct {
	Items  []models.CartItem    `json:"items"`
	Promo  *models.AppliedPromo `json:"promo,omitempty"`
	Notice string               `json:"notice,omitempty"`
}

// CartService handles cart lines and the attached promo.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	profileRepo repositories.ProfileRepository
	promoSvc    *PromoService
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, profileRepo repositories.ProfileRepository, promoSvc *PromoService) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		profileRepo: profileRepo,
		promoSvc:    promoSvc,
	}
}

// AddItem puts a product variant in the cart. A line with the same
// (product, size, color) identity already in the cart absorbs the quantity
// instead of duplicating.
func (s *CartService) AddItem(userID, productID, size, color string, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}

	existing, err := s.cartRepo.GetItems(userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].SameVariant(item) {
			merged := existing[i]
			merged.Quantity += quantity
			if err := s.cartRepo.UpdateQuantity(merged.ID, merged.Quantity); err != nil {
				return nil, err
			}
			return &merged, nil
		}
	}

	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetCart returns the cart with its promo re-validated. A promo that no
// longer passes is detached silently and reported through Notice; the cart
// itself always loads.
func (s *CartService) GetCart(userID string) (*Cart, error) {
	items, err := s.cartRepo.GetItems(userID)
	if err != nil {
		return nil, err
	}
	cart := &Cart{Items: items}

	applied, err := s.cartRepo.GetAppliedPromo(userID)
	if err != nil {
		return nil, err
	}
	if applied == nil {
		return cart, nil
	}

	promo, notice, err := s.revalidate(applied, userID, items)
	if err != nil {
		return nil, err
	}
	cart.Promo = promo
	cart.Notice = notice
	return cart, nil
}

// ApplyPromo validates a code against the current cart and attaches it,
// replacing any promo already attached.
func (s *CartService) ApplyPromo(userID, code string) (*models.AppliedPromo, error) {
	items, err := s.cartRepo.GetItems(userID)
	if err != nil {
		return nil, err
	}
	subtotalDisplay, displayCurrency, err := s.displaySubtotal(userID, items)
	if err != nil {
		return nil, err
	}

	applied, err := s.promoSvc.Validate(code, userID, subtotalDisplay, displayCurrency)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.SetAppliedPromo(applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// DetachPromo removes any promo from the cart.
func (s *CartService) DetachPromo(userID string) error {
	return s.cartRepo.ClearAppliedPromo(userID)
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (s *CartService) UpdateQuantity(userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.cartRepo.Remove(itemID)
	}
	return s.cartRepo.UpdateQuantity(itemID, quantity)
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(userID, itemID string) error {
	return s.cartRepo.Remove(itemID)
}

// Clear empties the cart and detaches any promo.
func (s *CartService) Clear(userID string) error {
	if err := s.cartRepo.Clear(userID); err != nil {
		return err
	}
	return s.cartRepo.ClearAppliedPromo(userID)
}

// revalidate re-runs the promo checks against the current cart. A rejection
// detaches the promo and produces the shopper-facing notice; any other error
// is a store failure and propagates.
func (s *CartService) revalidate(applied *models.AppliedPromo, userID string, items []models.CartItem) (*models.AppliedPromo, string, error) {
	subtotalDisplay, displayCurrency, err := s.displaySubtotal(userID, items)
	if err != nil {
		return nil, "", err
	}

	fresh, err := s.promoSvc.Revalidate(applied, userID, subtotalDisplay, displayCurrency)
	if err != nil {
		if rej, ok := err.(*PromoRejection); ok {
			if clearErr := s.cartRepo.ClearAppliedPromo(userID); clearErr != nil {
				return nil, "", clearErr
			}
			return nil, fmt.Sprintf("Promo %s was removed: %s", applied.Code, rej.Message), nil
		}
		return nil, "", err
	}
	return fresh, "", nil
}

func (s *CartService) displaySubtotal(userID string, items []models.CartItem) (float64, string, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return 0, "", err
	}
	subtotalBase := pricing.Subtotal(items)
	return currency.ConvertFromBase(subtotalBase, profile.DisplayCurrency), profile.DisplayCurrency, nil
}
