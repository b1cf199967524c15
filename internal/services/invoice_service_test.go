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

type invoiceFixture struct {
	service     *services.InvoiceService
	customRepo  *repositories.MockCustomOrderRepository
	profiles    *repositories.MockProfileRepository
	txns        *repositories.MockTransactionRepository
	paystack    *payment.MockGateway
	flutterwave *payment.MockGateway
}

func newInvoiceFixture(t *testing.T, walletBalance float64) *invoiceFixture {
	t.Helper()

	txns := repositories.NewMockTransactionRepository()
	profiles := repositories.NewMockProfileRepository(txns)
	require.NoError(t, profiles.Create(&models.Profile{
		UserID:          "user-1",
		WalletBalance:   walletBalance,
		DisplayCurrency: "NGN",
	}))

	customRepo := repositories.NewMockCustomOrderRepository(profiles, txns)
	paystack := payment.NewMockGateway(models.MethodPaystack)
	flutterwave := payment.NewMockGateway(models.MethodFlutterwave)

	service := services.NewInvoiceService(
		customRepo,
		&payment.Selector{Paystack: paystack, Flutterwave: flutterwave},
		services.LogNotifier{},
		nil,
	)

	return &invoiceFixture{
		service:     service,
		customRepo:  customRepo,
		profiles:    profiles,
		txns:        txns,
		paystack:    paystack,
		flutterwave: flutterwave,
	}
}

func (f *invoiceFixture) submitAndQuote(t *testing.T, amount float64, quoteCurrency string) (*models.CustomOrderRequest, *models.Invoice) {
	t.Helper()
	req := &models.CustomOrderRequest{
		UserID:      "user-1",
		Title:       "Beaded wedding gown",
		Description: "Ivory, hand-beaded bodice",
		Quantity:    1,
	}
	require.NoError(t, f.service.SubmitRequest(req))

	invoice, err := f.service.Quote(req.ID, amount, quoteCurrency, "Quote for beaded gown")
	require.NoError(t, err)
	return req, invoice
}

func (f *invoiceFixture) requestStatus(t *testing.T, id string) string {
	t.Helper()
	req, err := f.customRepo.GetRequestByID(id)
	require.NoError(t, err)
	return req.Status
}

func (f *invoiceFixture) invoiceStatus(t *testing.T, id string) string {
	t.Helper()
	invoice, err := f.customRepo.GetInvoiceByID(id)
	require.NoError(t, err)
	return invoice.Status
}

func TestSubmitRequest_StartsUnderReview(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	req := &models.CustomOrderRequest{
		UserID:      "user-1",
		Title:       "Beaded wedding gown",
		Description: "Ivory, hand-beaded bodice",
		Quantity:    1,
	}
	require.NoError(t, f.service.SubmitRequest(req))
	assert.Equal(t, models.RequestUnderReview, f.requestStatus(t, req.ID))
}

func TestQuote_MovesRequestToQuoted(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	req, invoice := f.submitAndQuote(t, 25000, "")

	assert.Equal(t, models.RequestQuoted, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoiceSent, f.invoiceStatus(t, invoice.ID))
	assert.InDelta(t, 25000, invoice.Amount, 0.001)

	amount, code := invoice.DisplayAmount()
	assert.InDelta(t, 25000, amount, 0.001)
	assert.Equal(t, "NGN", code)
}

func TestQuote_NonBaseCurrencyKeepsQuotedFigure(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	_, invoice := f.submitAndQuote(t, 6.50, "USD")

	// The shopper is shown the quoted figure; the base amount is derived
	// for settlement.
	amount, code := invoice.DisplayAmount()
	assert.InDelta(t, 6.50, amount, 0.001)
	assert.Equal(t, "USD", code)
	assert.InDelta(t, 10000, invoice.Amount, 0.5)
}

func TestAcceptThenPayWithWallet(t *testing.T) {
	f := newInvoiceFixture(t, 30000)
	req, invoice := f.submitAndQuote(t, 25000, "")

	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))
	assert.Equal(t, models.RequestAccepted, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoiceAccepted, f.invoiceStatus(t, invoice.ID))

	require.NoError(t, f.service.PayWithWallet(invoice.ID, "user-1"))
	assert.Equal(t, models.RequestPaymentMade, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoicePaid, f.invoiceStatus(t, invoice.ID))

	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	assert.InDelta(t, 5000, profile.WalletBalance, 0.001)

	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.DirectionDebit, ledger[0].Direction)
	assert.Equal(t, models.MethodWallet, ledger[0].Provider)
}

func TestRejectIsTerminal(t *testing.T) {
	f := newInvoiceFixture(t, 50000)
	req, invoice := f.submitAndQuote(t, 25000, "")

	require.NoError(t, f.service.Reject(invoice.ID, "user-1"))
	assert.Equal(t, models.RequestRejected, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoiceRejected, f.invoiceStatus(t, invoice.ID))

	// Neither a late acceptance nor a payment moves a rejected invoice.
	err := f.service.Accept(invoice.ID, "user-1")
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
	err = f.service.PayWithWallet(invoice.ID, "user-1")
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	assert.Equal(t, models.RequestRejected, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoiceRejected, f.invoiceStatus(t, invoice.ID))
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestPayBeforeAcceptanceRejected(t *testing.T) {
	f := newInvoiceFixture(t, 50000)
	_, invoice := f.submitAndQuote(t, 25000, "")

	err := f.service.PayWithWallet(invoice.ID, "user-1")
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
	assert.Equal(t, models.InvoiceSent, f.invoiceStatus(t, invoice.ID))

	_, err = f.service.InitiateGatewayPayment(context.Background(), invoice.ID, "user-1", "user@example.com")
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
}

func TestPayWithWallet_InsufficientFundsLeavesInvoiceAccepted(t *testing.T) {
	f := newInvoiceFixture(t, 1000)
	req, invoice := f.submitAndQuote(t, 25000, "")
	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))

	err := f.service.PayWithWallet(invoice.ID, "user-1")
	assert.ErrorIs(t, err, repositories.ErrInsufficientFunds)

	assert.Equal(t, models.InvoiceAccepted, f.invoiceStatus(t, invoice.ID))
	assert.Equal(t, models.RequestAccepted, f.requestStatus(t, req.ID))
	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1000, profile.WalletBalance, 0.001)
}

func TestGatewayInvoicePayment_NeverTouchesWallet(t *testing.T) {
	f := newInvoiceFixture(t, 1000)
	req, invoice := f.submitAndQuote(t, 6.50, "USD")
	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))
	ctx := context.Background()

	// A USD quote charges through the non-base gateway.
	resp, err := f.service.InitiateGatewayPayment(ctx, invoice.ID, "user-1", "user@example.com")
	require.NoError(t, err)
	require.NoError(t, f.service.VerifyGatewayPayment(ctx, invoice.ID, "user-1", resp.Reference))

	assert.Equal(t, models.InvoicePaid, f.invoiceStatus(t, invoice.ID))
	assert.Equal(t, models.RequestPaymentMade, f.requestStatus(t, req.ID))

	profile, err := f.profiles.GetByUserID("user-1")
	require.NoError(t, err)
	assert.InDelta(t, 1000, profile.WalletBalance, 0.001)

	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.MethodFlutterwave, ledger[0].Provider)
	assert.Equal(t, resp.Reference, ledger[0].Reference)
	assert.InDelta(t, 6.50, ledger[0].OriginalAmount, 0.001)

	paid, err := f.customRepo.GetInvoiceByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MethodFlutterwave, paid.PaymentMethod)
	assert.Equal(t, resp.Reference, paid.PaymentRef)
}

func TestGatewayInvoicePayment_FailedChargeChangesNothing(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	_, invoice := f.submitAndQuote(t, 25000, "")
	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))
	ctx := context.Background()

	resp, err := f.service.InitiateGatewayPayment(ctx, invoice.ID, "user-1", "user@example.com")
	require.NoError(t, err)
	f.paystack.FailReference(resp.Reference)

	err = f.service.VerifyGatewayPayment(ctx, invoice.ID, "user-1", resp.Reference)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrPaymentNotRecorded)

	assert.Equal(t, models.InvoiceAccepted, f.invoiceStatus(t, invoice.ID))
	ledger, err := f.txns.GetByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestGetInvoice_NilWhenNotQuoted(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	req := &models.CustomOrderRequest{
		UserID:      "user-1",
		Title:       "Beaded wedding gown",
		Description: "Ivory, hand-beaded bodice",
		Quantity:    1,
	}
	require.NoError(t, f.service.SubmitRequest(req))

	invoice, err := f.service.GetInvoice(req.ID)
	require.NoError(t, err)
	assert.Nil(t, invoice)
}

func TestCompleteRequest_OnlyAfterPayment(t *testing.T) {
	f := newInvoiceFixture(t, 30000)
	req, invoice := f.submitAndQuote(t, 25000, "")

	err := f.service.CompleteRequest(req.ID)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
	assert.Equal(t, models.RequestQuoted, f.requestStatus(t, req.ID))

	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))
	require.NoError(t, f.service.PayWithWallet(invoice.ID, "user-1"))

	require.NoError(t, f.service.CompleteRequest(req.ID))
	assert.Equal(t, models.RequestCompleted, f.requestStatus(t, req.ID))

	err = f.service.CompleteRequest(req.ID)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
}

func TestInvoiceActionsRequireOwnership(t *testing.T) {
	f := newInvoiceFixture(t, 30000)
	req, invoice := f.submitAndQuote(t, 25000, "")

	assert.ErrorIs(t, f.service.Accept(invoice.ID, "user-2"), services.ErrNotInvoiceOwner)
	assert.ErrorIs(t, f.service.Reject(invoice.ID, "user-2"), services.ErrNotInvoiceOwner)
	assert.Equal(t, models.RequestQuoted, f.requestStatus(t, req.ID))
	assert.Equal(t, models.InvoiceSent, f.invoiceStatus(t, invoice.ID))

	require.NoError(t, f.service.Accept(invoice.ID, "user-1"))

	assert.ErrorIs(t, f.service.PayWithWallet(invoice.ID, "user-2"), services.ErrNotInvoiceOwner)
	_, err := f.service.InitiateGatewayPayment(context.Background(), invoice.ID, "user-2", "other@example.com")
	assert.ErrorIs(t, err, services.ErrNotInvoiceOwner)
	err = f.service.VerifyGatewayPayment(context.Background(), invoice.ID, "user-2", "ps-ref")
	assert.ErrorIs(t, err, services.ErrNotInvoiceOwner)

	assert.Equal(t, models.InvoiceAccepted, f.invoiceStatus(t, invoice.ID))
	ledger, err := f.txns.GetByUser("user-2")
	require.NoError(t, err)
	assert.Empty(t, ledger)

	require.NoError(t, f.service.PayWithWallet(invoice.ID, "user-1"))
	assert.Equal(t, models.InvoicePaid, f.invoiceStatus(t, invoice.ID))
}

func TestQuote_RefusedWhenAlreadyQuoted(t *testing.T) {
	f := newInvoiceFixture(t, 0)
	req, invoice := f.submitAndQuote(t, 25000, "")

	_, err := f.service.Quote(req.ID, 30000, "", "second attempt")
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	assert.Equal(t, models.RequestQuoted, f.requestStatus(t, req.ID))
	kept, err := f.customRepo.GetInvoiceByRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, kept.ID)
	assert.InDelta(t, 25000, kept.Amount, 0.001)
}
