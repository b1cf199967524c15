package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"kasuwa/internal/currency"
	"kasuwa/internal/events"
	"kasuwa/internal/models"
	"kasuwa/internal/payment"
	"kasuwa/internal/repositories"

	"github.com/google/uuid"
)

// ErrFundingNotOwned means a funding reference was initiated by a different
// user. The credit always goes to the initiator, nobody else can claim it.
var ErrFundingNotOwned = errors.New("funding reference was not initiated by this user")

// WalletBalance is a balance read: authoritative in base currency plus the
// converted display figure.
type WalletBalance struct {
	Balance         float64 `json:"balance"` // base currency
	DisplayBalance  float64 `json:"display_balance"`
	DisplayCurrency string  `json:"display_currency"`
	Formatted       string  `json:"formatted"`
}

// WalletService funds and reads the internal prepaid wallet. Debits happen
// inside the checkout and invoice payment flows, never here.
type WalletService struct {
	profileRepo repositories.ProfileRepository
	txnRepo     repositories.TransactionRepository
	gateways    *payment.Selector
	changes     events.Publisher
}

// NewWalletService creates a new WalletService.
func NewWalletService(profileRepo repositories.ProfileRepository, txnRepo repositories.TransactionRepository, gateways *payment.Selector, changes events.Publisher) *WalletService {
	return &WalletService{
		profileRepo: profileRepo,
		txnRepo:     txnRepo,
		gateways:    gateways,
		changes:     changes,
	}
}

// Balance returns the wallet balance in base and display currency.
func (s *WalletService) Balance(userID string) (*WalletBalance, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	display := currency.ConvertFromBase(profile.WalletBalance, profile.DisplayCurrency)
	return &WalletBalance{
		Balance:         profile.WalletBalance,
		DisplayBalance:  display,
		DisplayCurrency: profile.DisplayCurrency,
		Formatted:       currency.Format(display, profile.DisplayCurrency),
	}, nil
}

// fundingReference builds the charge reference for a funding attempt. The
// initiating user is part of the reference, so the gateway echoes the
// binding back at verification and no state needs to survive a restart.
func fundingReference(userID string) string {
	return "fund-" + userID + "-" + uuid.New().String()
}

// fundingInitiatedBy reports whether the reference was minted for the user.
func fundingInitiatedBy(reference, userID string) bool {
	return strings.HasPrefix(reference, "fund-"+userID+"-")
}

// InitiateFunding starts a gateway charge to top the wallet up. Wallet
// balances are base currency, so funding always charges in base currency
// through the base-currency gateway.
func (s *WalletService) InitiateFunding(ctx context.Context, userID, email string, amountBase float64) (*payment.InitiateResponse, error) {
	if amountBase <= 0 {
		return nil, fmt.Errorf("funding amount must be positive")
	}
	gw := s.gateways.ForCurrency(currency.Base)
	return gw.Initiate(ctx, payment.InitiateRequest{
		Amount:    amountBase,
		Currency:  currency.Base,
		Email:     email,
		Reference: fundingReference(userID),
	})
}

// VerifyFunding confirms a funding callback and credits the wallet together
// with its credit ledger entry.
func (s *WalletService) VerifyFunding(ctx context.Context, userID, reference string) (*WalletBalance, error) {
	gw := s.gateways.ForCurrency(currency.Base)
	result, err := gw.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to verify funding %s: %w", reference, err)
	}
	if !result.Succeeded() {
		return nil, fmt.Errorf("funding payment %s was not successful", reference)
	}
	if !fundingInitiatedBy(result.Reference, userID) {
		return nil, ErrFundingNotOwned
	}

	// The same reference must not credit twice.
	if _, err := s.txnRepo.GetByReference(result.Reference); err == nil {
		return nil, fmt.Errorf("funding payment %s has already been credited", reference)
	}

	txn := &models.Transaction{
		UserID:      userID,
		Direction:   models.DirectionCredit,
		Amount:      result.Amount,
		Currency:    currency.Base,
		Description: "Wallet funding",
		Reference:   result.Reference,
		Status:      "completed",
		Provider:    gw.Name(),
	}
	if err := s.profileRepo.CreditWallet(userID, result.Amount, txn); err != nil {
		log.Printf("CRITICAL: verified funding %s could not be credited: %v", reference, err)
		return nil, fmt.Errorf("%w: reference %s", ErrPaymentNotRecorded, reference)
	}

	if s.changes != nil {
		s.changes.Publish(events.Change{
			EntityType: events.EntityTransactions,
			UserID:     userID,
			EntityID:   txn.ID,
			Action:     "created",
		})
	}
	return s.Balance(userID)
}

// Transactions returns the user's ledger history, newest first.
func (s *WalletService) Transactions(userID string) ([]models.Transaction, error) {
	return s.txnRepo.GetByUser(userID)
}
