package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"kasuwa/internal/currency"
	"kasuwa/internal/events"
	"kasuwa/internal/models"
	"kasuwa/internal/payment"
	"kasuwa/internal/pricing"
	"kasuwa/internal/repositories"

	"github.com/google/uuid"
)

// ErrPaymentNotRecorded marks the severe failure class where money moved at
// the provider but the order could not be persisted. Handlers must surface
// it distinctly, never as a generic retryable failure: a blind retry risks a
// double charge.
var ErrPaymentNotRecorded = errors.New("payment succeeded but the order could not be recorded, contact support")

// CheckoutResult is what a completed checkout hands back to the handler.
type CheckoutResult struct {
	Order  *models.Order       `json:"order"`
	Totals pricing.OrderTotals `json:"totals"`
	Notice string              `json:"notice,omitempty"`
}

// CheckoutService turns a cart into a paid order.
type CheckoutService struct {
	cartRepo    repositories.CartRepository
	orderRepo   repositories.OrderRepository
	profileRepo repositories.ProfileRepository
	promoRepo   repositories.PromoRepository
	promoSvc    *PromoService
	gateways    *payment.Selector
	fees        pricing.DeliveryFeeTable
	notifier    Notifier
	changes     events.Publisher
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	cartRepo repositories.CartRepository,
	orderRepo repositories.OrderRepository,
	profileRepo repositories.ProfileRepository,
	promoRepo repositories.PromoRepository,
	promoSvc *PromoService,
	gateways *payment.Selector,
	fees pricing.DeliveryFeeTable,
	notifier Notifier,
	changes events.Publisher,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		profileRepo: profileRepo,
		promoRepo:   promoRepo,
		promoSvc:    promoSvc,
		gateways:    gateways,
		fees:        fees,
		notifier:    notifier,
		changes:     changes,
	}
}

// Totals prices the current cart for review before payment. The attached
// promo is re-validated; a stale one is detached with a notice.
func (s *CheckoutService) Totals(userID, deliveryLocation string) (pricing.OrderTotals, string, error) {
	items, promo, notice, displayCurrency, err := s.loadCart(userID)
	if err != nil {
		return pricing.OrderTotals{}, "", err
	}
	return pricing.Assemble(items, deliveryLocation, promo, displayCurrency, s.fees), notice, nil
}

// PayWithWallet finalizes checkout against the wallet. The balance check,
// ledger entry, wallet debit and order insert are one atomic operation: an
// insufficient balance surfaces repositories.ErrInsufficientFunds with
// nothing persisted, so the handler can offer a top-up instead.
func (s *CheckoutService) PayWithWallet(userID, deliveryLocation, deliveryAddress string) (*CheckoutResult, error) {
	items, promo, notice, displayCurrency, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	totals := pricing.Assemble(items, deliveryLocation, promo, displayCurrency, s.fees)
	order := s.buildOrder(userID, items, totals, promo, deliveryAddress)
	// Wallet debits always settle in the base currency.
	order.PaymentMethod = models.MethodWallet
	order.PaymentStatus = models.PaymentPaid
	order.Currency = currency.Base
	order.ID = uuid.New().String()
	order.PaymentRef = order.ID

	txn := &models.Transaction{
		UserID:      userID,
		Direction:   models.DirectionDebit,
		Amount:      totals.Total,
		Currency:    currency.Base,
		Description: fmt.Sprintf("Order payment for %d item(s)", len(items)),
		Reference:   order.ID,
		Status:      "completed",
		Provider:    models.MethodWallet,
	}

	if err := s.orderRepo.CreateWithPayment(order, txn, true); err != nil {
		return nil, err
	}

	s.finishOrder(order, promo)
	return &CheckoutResult{Order: order, Totals: totals, Notice: notice}, nil
}

// InitiateGatewayPayment starts a gateway charge for the current cart in the
// shopper's display currency and returns the authorization URL. Nothing is
// persisted yet; a shopper who cancels at the provider simply never verifies.
func (s *CheckoutService) InitiateGatewayPayment(ctx context.Context, userID, email, deliveryLocation string) (*payment.InitiateResponse, error) {
	items, promo, _, displayCurrency, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	totals := pricing.Assemble(items, deliveryLocation, promo, displayCurrency, s.fees)
	gw := s.gateways.ForCurrency(displayCurrency)
	return gw.Initiate(ctx, payment.InitiateRequest{
		Amount:    totals.DisplayTotal,
		Currency:  displayCurrency,
		Email:     email,
		Reference: "ord-" + uuid.New().String(),
	})
}

// VerifyGatewayPayment confirms a provider callback and records the order.
// The wallet balance is never touched on this path. A verification that
// succeeds at the provider but fails to persist returns
// ErrPaymentNotRecorded.
func (s *CheckoutService) VerifyGatewayPayment(ctx context.Context, userID, reference, deliveryLocation, deliveryAddress string) (*CheckoutResult, error) {
	items, promo, notice, displayCurrency, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	totals := pricing.Assemble(items, deliveryLocation, promo, displayCurrency, s.fees)
	gw := s.gateways.ForCurrency(displayCurrency)

	result, err := gw.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment %s: %w", reference, err)
	}
	if !result.Succeeded() {
		return nil, fmt.Errorf("payment %s was not successful", reference)
	}
	if math.Abs(result.Amount-totals.DisplayTotal) > 0.01 || result.Currency != displayCurrency {
		return nil, fmt.Errorf("payment %s settled %s %.2f but the cart totals %s %.2f",
			reference, result.Currency, result.Amount, displayCurrency, totals.DisplayTotal)
	}

	order := s.buildOrder(userID, items, totals, promo, deliveryAddress)
	// The order records what the payment actually settled in.
	order.PaymentMethod = gw.Name()
	order.PaymentStatus = models.PaymentPaid
	order.Currency = result.Currency
	if result.Currency != currency.Base {
		order.OriginalAmount = result.Amount
	}
	order.PaymentRef = result.Reference

	txn := &models.Transaction{
		UserID:      userID,
		Direction:   models.DirectionDebit,
		Amount:      totals.Total,
		Currency:    result.Currency,
		Description: fmt.Sprintf("Order payment for %d item(s)", len(items)),
		Reference:   result.Reference,
		Status:      "completed",
		Provider:    gw.Name(),
	}
	if result.Currency != currency.Base {
		txn.OriginalAmount = result.Amount
	}

	if err := s.orderRepo.CreateWithPayment(order, txn, false); err != nil {
		// Money has moved at the provider; this must not read as retryable.
		log.Printf("CRITICAL: verified payment %s could not be recorded: %v", reference, err)
		return nil, fmt.Errorf("%w: reference %s", ErrPaymentNotRecorded, reference)
	}

	s.finishOrder(order, promo)
	return &CheckoutResult{Order: order, Totals: totals, Notice: notice}, nil
}

// loadCart reads the cart and re-validates its promo immediately before use.
// A rejection detaches the promo and continues without it; checkout never
// proceeds with a stale promo.
func (s *CheckoutService) loadCart(userID string) ([]models.CartItem, *models.AppliedPromo, string, string, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, nil, "", "", err
	}
	items, err := s.cartRepo.GetItems(userID)
	if err != nil {
		return nil, nil, "", "", err
	}

	applied, err := s.cartRepo.GetAppliedPromo(userID)
	if err != nil {
		return nil, nil, "", "", err
	}
	if applied == nil {
		return items, nil, "", profile.DisplayCurrency, nil
	}

	subtotalDisplay := currency.ConvertFromBase(pricing.Subtotal(items), profile.DisplayCurrency)
	fresh, err := s.promoSvc.Revalidate(applied, userID, subtotalDisplay, profile.DisplayCurrency)
	if err != nil {
		if rej, ok := err.(*PromoRejection); ok {
			if clearErr := s.cartRepo.ClearAppliedPromo(userID); clearErr != nil {
				return nil, nil, "", "", clearErr
			}
			notice := fmt.Sprintf("Promo %s was removed: %s", applied.Code, rej.Message)
			return items, nil, notice, profile.DisplayCurrency, nil
		}
		return nil, nil, "", "", err
	}
	return items, fresh, "", profile.DisplayCurrency, nil
}

func (s *CheckoutService) buildOrder(userID string, items []models.CartItem, totals pricing.OrderTotals, promo *models.AppliedPromo, deliveryAddress string) *models.Order {
	order := &models.Order{
		UserID:          userID,
		Subtotal:        totals.Subtotal,
		ServiceFee:      totals.ServiceFee,
		DeliveryFee:     totals.DeliveryFee,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          models.OrderPending,
		DeliveryAddress: deliveryAddress,
	}
	if promo != nil {
		order.PromoCodeID = promo.PromoCodeID
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return order
}

// finishOrder runs the post-payment bookkeeping: promo usage, cart clear,
// admin notification, change event. None of these can fail the checkout; the
// order and its payment are already durable.
func (s *CheckoutService) finishOrder(order *models.Order, promo *models.AppliedPromo) {
	if promo != nil {
		if err := s.promoRepo.IncrementUsage(promo.PromoCodeID); err != nil {
			log.Printf("Warning: failed to increment usage for promo %s: %v", promo.Code, err)
		}
	}
	if err := s.cartRepo.Clear(order.UserID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s: %v", order.UserID, err)
	}
	if err := s.cartRepo.ClearAppliedPromo(order.UserID); err != nil {
		log.Printf("Warning: failed to clear applied promo for user %s: %v", order.UserID, err)
	}
	if s.notifier != nil {
		s.notifier.NotifyAdmin("order.created", map[string]interface{}{
			"order_id": order.ID,
			"user_id":  order.UserID,
			"total":    order.Total,
			"currency": order.Currency,
			"method":   order.PaymentMethod,
		})
	}
	if s.changes != nil {
		s.changes.Publish(events.Change{
			EntityType: events.EntityOrders,
			UserID:     order.UserID,
			EntityID:   order.ID,
			Action:     "created",
		})
	}
}
