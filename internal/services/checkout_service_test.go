package services_test

import (
	"context"
	"testing"

	"kasuwa/internal/models"
	"kasuwa/internal/payment"
	"kasuwa/internal/pricing"
	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	service     *services.CheckoutService
	cartRepo    *repositories.MockCartRepository
	orderRepo   *repositories.MockOrderRepository
	profiles    *repositories.MockProfileRepository
	promoRepo   *repositories.MockPromoRepository
	txns        *repositories.MockTransactionRepository
	paystack    *payment.MockGateway
	flutterwave *payment.MockGateway
}

// newCheckoutFixture seeds a cart worth ₦10,000 (2 × ₦5,000) plus an active
// SAVE10 promo code, and funds the wallet with walletBalance.
func newCheckoutFixture(t *testing.T, displayCurrency string, walletBalance float64) *checkoutFixture {
	t.Helper()

	txns := repositories.NewMockTransactionRepository()
	profiles := repositories.NewMockProfileRepository(txns)
	require.NoError(t, profiles.Create(&models.Profile{
		UserID:          "user-1",
		WalletBalance:   walletBalance,
		DisplayCurrency: displayCurrency,
	}))

	cartRepo := repositories.NewMockCartRepository()
	require.NoError(t, cartRepo.Save(&models.CartItem{
		UserID:    "user-1",
		ProductID: "prod-1",
		Name:      "Ankara Tote",
		Price:     5000,
		Quantity:  2,
	}))

	promoRepo := repositories.NewMockPromoRepository()
	require.NoError(t, promoRepo.Create(&models.PromoCode{
		Code:               "SAVE10",
		Active:             true,
		DiscountPercentage: 10,
	}))

	orderRepo := repositories.NewMockOrderRepository(profiles, txns)
	promoSvc := services.NewPromoService(promoRepo, orderRepo)

	paystack := payment.NewMockGateway(models.MethodPaystack)
	flutterwave := payment.NewMockGateway(models.MethodFlutterwave)

	service := services.NewCheckoutService(
		cartRepo, orderRepo, profiles, promoRepo, promoSvc,
		&payment.Selector{Paystack: paystack, Flutterwave: flutterwave},
		pricing.DefaultDeliveryFees(),
		services.LogNotifier{},
		nil,
	)

	return &checkoutFixture{
		service:     service,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		profiles:    profiles,
		promoRepo:   promoRepo,
		txns:        txns,
		paystack:    paystack,
		flutterwave: flutterwave,
	}
}

func (f *checkoutFixture) applyPromo(t *testing.T, code string) {
	t.Helper()
	promo, err := f.promoRepo.GetByCode(code)
	require.NoError(t, err)
	require.NoError(t, f.cartRepo.SetAppliedPromo(&models.AppliedPromo{
		UserID:      "user-1",
		PromoCodeID: promo.ID,
		Code:        promo.Code,
		Discount:    promo.DiscountPercentage / 100,
	}))
}

func (f *checkoutFixture) walletBalance(t *testing.T) float64 {
	t.Helper()
	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	return profile.WalletBalance
}

func TestTotals_FeeAndDiscountBreakdown(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 0)
	f.applyPromo(t, "SAVE10")

	totals, notice, err := f.service.Totals("user-1", "Lagos")
	require.NoError(t, err)
	assert.Empty(t, notice)

	// ₦10,000 subtotal, 2% service fee, within-city delivery, 10% off the
	// subtotal only.
	assert.InDelta(t, 10000, totals.Subtotal, 0.001)
	assert.InDelta(t, 200, totals.ServiceFee, 0.001)
	assert.InDelta(t, 500, totals.DeliveryFee, 0.001)
	assert.InDelta(t, 1000, totals.Discount, 0.001)
	assert.InDelta(t, 9700, totals.Total, 0.001)
}

func TestPayWithWallet_DebitsAndRecordsOrder(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 9700)
	f.applyPromo(t, "SAVE10")

	result, err := f.service.PayWithWallet("user-1", "Lagos", "12 Marina Road, Lagos")
	require.NoError(t, err)

	assert.InDelta(t, 0, f.walletBalance(t), 0.001)

	order := result.Order
	assert.Equal(t, models.MethodWallet, order.PaymentMethod)
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "NGN", order.Currency)
	assert.InDelta(t, 9700, order.Total, 0.001)
	assert.Equal(t, order.ID, order.PaymentRef)
	assert.Len(t, order.Items, 1)

	// Exactly one wallet debit in the ledger.
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.DirectionDebit, ledger[0].Direction)
	assert.Equal(t, models.MethodWallet, ledger[0].Provider)
	assert.InDelta(t, 9700, ledger[0].Amount, 0.001)

	// The cart is cleared and the promo usage counted.
	items, err := f.cartRepo.GetItems("user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	promo, err := f.promoRepo.GetByCode("SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.UsageCount)
}

func TestPayWithWallet_InsufficientFundsPersistsNothing(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 100)
	f.applyPromo(t, "SAVE10")

	_, err := f.service.PayWithWallet("user-1", "Lagos", "12 Marina Road, Lagos")
	assert.ErrorIs(t, err, repositories.ErrInsufficientFunds)

	// Balance, ledger, orders and the cart are all untouched.
	assert.InDelta(t, 100, f.walletBalance(t), 0.001)
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, ledger)
	orders, err := f.orderRepo.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := f.cartRepo.GetItems("user-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGatewayCheckout_NeverTouchesWallet(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 100)
	f.applyPromo(t, "SAVE10")
	ctx := context.Background()

	resp, err := f.service.InitiateGatewayPayment(ctx, "user-1", "user@example.com", "Lagos")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Reference)
	require.NotEmpty(t, resp.AuthorizationURL)

	// Nothing exists until the provider confirms.
	orders, err := f.orderRepo.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)

	result, err := f.service.VerifyGatewayPayment(ctx, "user-1", resp.Reference, "Lagos", "12 Marina Road, Lagos")
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, models.MethodPaystack, order.PaymentMethod)
	assert.Equal(t, "NGN", order.Currency)
	assert.InDelta(t, 9700, order.Total, 0.001)
	assert.Equal(t, resp.Reference, order.PaymentRef)

	// The wallet balance is untouched; the ledger entry carries the
	// provider and its reference instead.
	assert.InDelta(t, 100, f.walletBalance(t), 0.001)
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.MethodPaystack, ledger[0].Provider)
	assert.Equal(t, resp.Reference, ledger[0].Reference)
}

func TestGatewayCheckout_NonBaseCurrencyUsesFlutterwave(t *testing.T) {
	f := newCheckoutFixture(t, "USD", 0)
	ctx := context.Background()

	resp, err := f.service.InitiateGatewayPayment(ctx, "user-1", "user@example.com", "Lagos")
	require.NoError(t, err)

	result, err := f.service.VerifyGatewayPayment(ctx, "user-1", resp.Reference, "Lagos", "12 Marina Road, Lagos")
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, models.MethodFlutterwave, order.PaymentMethod)
	assert.Equal(t, "USD", order.Currency)
	// The base figures stay authoritative; the settled USD figure is kept
	// alongside.
	assert.InDelta(t, 10700, order.Total, 0.001)
	assert.InDelta(t, result.Totals.DisplayTotal, order.OriginalAmount, 0.001)
	assert.Greater(t, order.OriginalAmount, 0.0)
}

func TestVerifyGateway_FailedChargeRecordsNothing(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 0)
	ctx := context.Background()

	resp, err := f.service.InitiateGatewayPayment(ctx, "user-1", "user@example.com", "Lagos")
	require.NoError(t, err)
	f.paystack.FailReference(resp.Reference)

	_, err = f.service.VerifyGatewayPayment(ctx, "user-1", resp.Reference, "Lagos", "12 Marina Road, Lagos")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrPaymentNotRecorded)

	orders, err := f.orderRepo.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	items, err := f.cartRepo.GetItems("user-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestVerifyGateway_AmountMismatchRejected(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 0)
	ctx := context.Background()

	resp, err := f.service.InitiateGatewayPayment(ctx, "user-1", "user@example.com", "Lagos")
	require.NoError(t, err)

	// The cart grows between initiation and verification, so the settled
	// amount no longer covers the order.
	require.NoError(t, f.cartRepo.Save(&models.CartItem{
		UserID:    "user-1",
		ProductID: "prod-2",
		Name:      "Adire Scarf",
		Price:     2000,
		Quantity:  1,
	}))

	_, err = f.service.VerifyGatewayPayment(ctx, "user-1", resp.Reference, "Lagos", "12 Marina Road, Lagos")
	assert.Error(t, err)

	orders, err := f.orderRepo.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_StalePromoDetachedBeforePayment(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 20000)
	f.applyPromo(t, "SAVE10")

	// Retire the code after it was attached.
	promo, err := f.promoRepo.GetByCode("SAVE10")
	require.NoError(t, err)
	promo.Active = false
	require.NoError(t, f.promoRepo.Update(promo))

	result, err := f.service.PayWithWallet("user-1", "Lagos", "12 Marina Road, Lagos")
	require.NoError(t, err)

	// The order was priced without the discount and the shopper told why.
	assert.InDelta(t, 10700, result.Order.Total, 0.001)
	assert.Zero(t, result.Order.Discount)
	assert.Contains(t, result.Notice, "SAVE10")
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t, "NGN", 10000)
	require.NoError(t, f.cartRepo.Clear("user-1"))

	_, err := f.service.PayWithWallet("user-1", "Lagos", "12 Marina Road, Lagos")
	assert.Error(t, err)

	_, err = f.service.InitiateGatewayPayment(context.Background(), "user-1", "user@example.com", "Lagos")
	assert.Error(t, err)
}
