package services_test

import (
	"context"
	"testing"

	"kasuwa/internal/models"
	"kasuwa/internal/payment"
	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletFixture struct {
	service  *services.WalletService
	profiles *repositories.MockProfileRepository
	txns     *repositories.MockTransactionRepository
	paystack *payment.MockGateway
}

func newWalletFixture(t *testing.T, displayCurrency string) *walletFixture {
	t.Helper()

	txns := repositories.NewMockTransactionRepository()
	profiles := repositories.NewMockProfileRepository(txns)
	require.NoError(t, profiles.Create(&models.Profile{
		UserID:          "user-1",
		DisplayCurrency: displayCurrency,
	}))

	paystack := payment.NewMockGateway(models.MethodPaystack)
	flutterwave := payment.NewMockGateway(models.MethodFlutterwave)

	return &walletFixture{
		service: services.NewWalletService(
			profiles, txns,
			&payment.Selector{Paystack: paystack, Flutterwave: flutterwave},
			nil,
		),
		profiles: profiles,
		txns:     txns,
		paystack: paystack,
	}
}

func TestWalletFunding_CreditsBalance(t *testing.T) {
	f := newWalletFixture(t, "NGN")
	ctx := context.Background()

	resp, err := f.service.InitiateFunding(ctx, "user-1", "user@example.com", 5000)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Reference)

	balance, err := f.service.VerifyFunding(ctx, "user-1", resp.Reference)
	require.NoError(t, err)
	assert.InDelta(t, 5000, balance.Balance, 0.001)
	assert.Equal(t, "₦5,000", balance.Formatted)

	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.DirectionCredit, ledger[0].Direction)
	assert.Equal(t, resp.Reference, ledger[0].Reference)
	assert.Equal(t, models.MethodPaystack, ledger[0].Provider)
}

func TestWalletFunding_DuplicateReferenceCreditsOnce(t *testing.T) {
	f := newWalletFixture(t, "NGN")
	ctx := context.Background()

	resp, err := f.service.InitiateFunding(ctx, "user-1", "user@example.com", 5000)
	require.NoError(t, err)
	_, err = f.service.VerifyFunding(ctx, "user-1", resp.Reference)
	require.NoError(t, err)

	// Replaying the same provider callback must not credit again.
	_, err = f.service.VerifyFunding(ctx, "user-1", resp.Reference)
	assert.Error(t, err)

	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	assert.InDelta(t, 5000, profile.WalletBalance, 0.001)
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestWalletFunding_FailedChargeCreditsNothing(t *testing.T) {
	f := newWalletFixture(t, "NGN")
	ctx := context.Background()

	resp, err := f.service.InitiateFunding(ctx, "user-1", "user@example.com", 5000)
	require.NoError(t, err)
	f.paystack.FailReference(resp.Reference)

	_, err = f.service.VerifyFunding(ctx, "user-1", resp.Reference)
	assert.Error(t, err)

	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	assert.Zero(t, profile.WalletBalance)
}

func TestWalletFunding_RejectsNonPositiveAmount(t *testing.T) {
	f := newWalletFixture(t, "NGN")

	_, err := f.service.InitiateFunding(context.Background(), "user-1", "user@example.com", 0)
	assert.Error(t, err)
	_, err = f.service.InitiateFunding(context.Background(), "user-1", "user@example.com", -100)
	assert.Error(t, err)
}

func TestWalletBalance_DisplayCurrencyConversion(t *testing.T) {
	f := newWalletFixture(t, "USD")
	require.NoError(t, f.profiles.CreditWallet("user-1", 10000, &models.Transaction{
		UserID:    "user-1",
		Direction: models.DirectionCredit,
		Amount:    10000,
		Currency:  "NGN",
		Reference: "seed-1",
	}))

	balance, err := f.service.Balance("user-1")
	require.NoError(t, err)
	assert.InDelta(t, 10000, balance.Balance, 0.001)
	assert.InDelta(t, 6.50, balance.DisplayBalance, 0.001)
	assert.Equal(t, "USD", balance.DisplayCurrency)
	assert.Equal(t, "$6.50", balance.Formatted)
}

func TestWalletFunding_ReferenceBoundToInitiator(t *testing.T) {
	f := newWalletFixture(t, "NGN")
	require.NoError(t, f.profiles.Create(&models.Profile{
		UserID:          "user-2",
		DisplayCurrency: "NGN",
	}))
	ctx := context.Background()

	resp, err := f.service.InitiateFunding(ctx, "user-1", "user@example.com", 5000)
	require.NoError(t, err)

	// A different user who learned the reference cannot claim the credit.
	_, err = f.service.VerifyFunding(ctx, "user-2", resp.Reference)
	assert.ErrorIs(t, err, services.ErrFundingNotOwned)

	for _, userID := range []string{"user-1", "user-2"} {
		profile, err := f.profiles.GetByUserID(userID)
		require.NoError(t, err)
		assert.Zero(t, profile.WalletBalance)
	}

	// The initiator still can.
	balance, err := f.service.VerifyFunding(ctx, "user-1", resp.Reference)
	require.NoError(t, err)
	assert.InDelta(t, 5000, balance.Balance, 0.001)
}
