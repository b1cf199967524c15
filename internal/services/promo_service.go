package services

import (
	"fmt"
	"time"

	"kasuwa/internal/currency"
	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
)

// RejectionReason identifies why a promo code was refused.
type RejectionReason string

// Rejection reasons, in the order the checks run.
const (
	ReasonInvalidOrExpired  RejectionReason = "INVALID_OR_EXPIRED"
	ReasonAlreadyUsed       RejectionReason = "ALREADY_USED"
	ReasonUsageLimitReached RejectionReason = "USAGE_LIMIT_REACHED"
	ReasonExpired           RejectionReason = "EXPIRED"
	ReasonNotYetActive      RejectionReason = "NOT_YET_ACTIVE"
	ReasonBelowMinimum      RejectionReason = "BELOW_MINIMUM"
	ReasonNotFirstTime      RejectionReason = "NOT_FIRST_TIME"
)

// PromoRejection is a validation failure, not a system error: handlers
// surface Message inline and the flow continues.
type PromoRejection struct {
	Reason  RejectionReason
	Message string
}

// Error implements the error interface.
func (r *PromoRejection) Error() string {
	return r.Message
}

func reject(reason RejectionReason, format string, args ...interface{}) *PromoRejection {
	return &PromoRejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// PromoService validates promo codes against their eligibility rules.
type PromoService struct {
	promoRepo repositories.PromoRepository
	orderRepo repositories.OrderRepository
	now       func() time.Time
}

// NewPromoService creates a new PromoService.
func NewPromoService(promoRepo repositories.PromoRepository, orderRepo repositories.OrderRepository) *PromoService {
	return &PromoService{
		promoRepo: promoRepo,
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

// Validate runs the eligibility checks for a code against a user and their
// cart subtotal (given in the user's display currency). The checks run in a
// fixed order and stop at the first failure, so rejection messages are
// deterministic. On success it returns the AppliedPromo to attach to the
// cart; on failure the error is a *PromoRejection.
func (s *PromoService) Validate(code, userID string, cartSubtotalDisplay float64, displayCurrency string) (*models.AppliedPromo, error) {
	promo, err := s.promoRepo.GetByCode(code)
	if err != nil || !promo.Active {
		return nil, reject(ReasonInvalidOrExpired, "promo code %s is invalid or expired", code)
	}

	used, err := s.orderRepo.ExistsWithPromo(userID, promo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check promo usage: %w", err)
	}
	if used {
		return nil, reject(ReasonAlreadyUsed, "you have already used promo code %s", code)
	}

	if promo.MaxUsageCount > 0 && promo.UsageCount >= promo.MaxUsageCount {
		return nil, reject(ReasonUsageLimitReached, "promo code %s has reached its usage limit", code)
	}

	now := s.now()
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return nil, reject(ReasonExpired, "promo code %s expired on %s", code, promo.ExpiresAt.Format("2 Jan 2006"))
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, reject(ReasonNotYetActive, "promo code %s is not active yet", code)
	}

	if promo.MinOrderAmount > 0 {
		subtotalBase := currency.ConvertToBase(cartSubtotalDisplay, displayCurrency)
		if subtotalBase < promo.MinOrderAmount {
			// Re-express the minimum in the shopper's display currency.
			minDisplay := currency.ConvertFromBase(promo.MinOrderAmount, displayCurrency)
			return nil, reject(ReasonBelowMinimum, "promo code %s requires a minimum order of %s",
				code, currency.Format(minDisplay, displayCurrency))
		}
	}

	if promo.FirstTimeOnly {
		count, err := s.orderRepo.CountByUser(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count orders: %w", err)
		}
		if count > 0 {
			return nil, reject(ReasonNotFirstTime, "promo code %s is for first-time buyers only", code)
		}
	}

	return &models.AppliedPromo{
		UserID:      userID,
		PromoCodeID: promo.ID,
		Code:        promo.Code,
		Discount:    promo.DiscountPercentage / 100,
		Description: promo.Description,
	}, nil
}

// Revalidate re-runs every check for an already-attached promo. A promo
// persisted from a previous session is never trusted: it may have been used
// up elsewhere between application and checkout.
func (s *PromoService) Revalidate(applied *models.AppliedPromo, userID string, cartSubtotalDisplay float64, displayCurrency string) (*models.AppliedPromo, error) {
	return s.Validate(applied.Code, userID, cartSubtotalDisplay, displayCurrency)
}

// GetAllPromos retrieves every promo code, including retired ones.
func (s *PromoService) GetAllPromos() ([]models.PromoCode, error) {
	return s.promoRepo.GetAll()
}

// GetPromoByID retrieves a single promo code by its ID.
func (s *PromoService) GetPromoByID(id string) (*models.PromoCode, error) {
	return s.promoRepo.GetByID(id)
}

// CreatePromo creates a new promo code.
func (s *PromoService) CreatePromo(promo *models.PromoCode) error {
	return s.promoRepo.Create(promo)
}

// UpdatePromo updates an existing promo code. Retiring a code is an update
// that clears Active.
func (s *PromoService) UpdatePromo(promo *models.PromoCode) error {
	return s.promoRepo.Update(promo)
}

// CalculateDiscount returns the discount amount for a subtotal.
func CalculateDiscount(subtotal float64, applied *models.AppliedPromo) float64 {
	if applied == nil {
		return 0
	}
	return subtotal * applied.Discount
}
