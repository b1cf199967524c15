package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"kasuwa/internal/currency"
	"kasuwa/internal/events"
	"kasuwa/internal/models"
	"kasuwa/internal/payment"
	"kasuwa/internal/repositories"

	"github.com/google/uuid"
)

// ErrNotInvoiceOwner means the caller does not own the request behind the
// invoice. Handlers surface it as not found so invoice IDs cannot be probed.
var ErrNotInvoiceOwner = errors.New("invoice does not belong to this user")

// InvoiceService drives the custom order lifecycle: submission, quoting, the
// shopper's accept/reject decision, and invoice payment.
type InvoiceService struct {
	customRepo repositories.CustomOrderRepository
	gateways   *payment.Selector
	notifier   Notifier
	changes    events.Publisher

	// processing gates one in-flight action per invoice, so a double tap
	// cannot submit Accept/Reject/Pay twice.
	processing sync.Map
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(customRepo repositories.CustomOrderRepository, gateways *payment.Selector, notifier Notifier, changes events.Publisher) *InvoiceService {
	return &InvoiceService{
		customRepo: customRepo,
		gateways:   gateways,
		notifier:   notifier,
		changes:    changes,
	}
}

// SubmitRequest files a new custom order request in the under_review state.
func (s *InvoiceService) SubmitRequest(req *models.CustomOrderRequest) error {
	if err := s.customRepo.CreateRequest(req); err != nil {
		return err
	}
	s.notifyAdmin("custom_request.submitted", map[string]interface{}{
		"request_id": req.ID,
		"user_id":    req.UserID,
		"title":      req.Title,
	})
	s.publishChange(events.EntityCustomOrders, req.UserID, req.ID, "created")
	return nil
}

// GetRequests returns a user's custom order requests.
func (s *InvoiceService) GetRequests(userID string) ([]models.CustomOrderRequest, error) {
	return s.customRepo.GetRequestsByUser(userID)
}

// GetAllRequests returns every request, for the back office.
func (s *InvoiceService) GetAllRequests() ([]models.CustomOrderRequest, error) {
	return s.customRepo.GetAllRequests()
}

// GetRequest returns a single request by its ID.
func (s *InvoiceService) GetRequest(requestID string) (*models.CustomOrderRequest, error) {
	return s.customRepo.GetRequestByID(requestID)
}

// GetInvoice returns the invoice attached to a request, or nil when the
// request has not been quoted.
func (s *InvoiceService) GetInvoice(requestID string) (*models.Invoice, error) {
	return s.customRepo.GetInvoiceByRequest(requestID)
}

// ownedInvoice loads an invoice and refuses a caller who does not own the
// request behind it. Every shopper-side transition goes through this check.
func (s *InvoiceService) ownedInvoice(invoiceID, userID string) (*models.Invoice, error) {
	invoice, err := s.customRepo.GetInvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}
	req, err := s.customRepo.GetRequestByID(invoice.RequestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotInvoiceOwner
	}
	return invoice, nil
}

// Quote attaches a priced invoice to a request (admin action). A quote
// issued in a non-base currency keeps the quoted figure in
// OriginalAmount/Currency and converts the authoritative Amount to base.
func (s *InvoiceService) Quote(requestID string, amount float64, quoteCurrency, description string) (*models.Invoice, error) {
	invoice := &models.Invoice{
		RequestID:   requestID,
		Description: description,
	}
	if quoteCurrency == "" || quoteCurrency == currency.Base {
		invoice.Amount = amount
	} else {
		invoice.Currency = quoteCurrency
		invoice.OriginalAmount = amount
		invoice.Amount = currency.ConvertToBase(amount, quoteCurrency)
	}

	if err := s.customRepo.CreateInvoice(invoice); err != nil {
		return nil, err
	}

	req, err := s.customRepo.GetRequestByID(requestID)
	if err == nil {
		s.publishChange(events.EntityInvoices, req.UserID, invoice.ID, "created")
	}
	return invoice, nil
}

// Accept records the shopper's acceptance of a sent invoice. Outside the
// guard (invoice not in sent state) the repository reports
// ErrInvalidTransition and nothing changes.
func (s *InvoiceService) Accept(invoiceID, userID string) error {
	return s.decide(invoiceID, userID, repositories.ActionAccept, "invoice.accepted")
}

// Reject records the shopper's rejection of a sent invoice. Terminal: a
// rejected request takes no further transitions.
func (s *InvoiceService) Reject(invoiceID, userID string) error {
	return s.decide(invoiceID, userID, repositories.ActionReject, "invoice.rejected")
}

func (s *InvoiceService) decide(invoiceID, userID, action, event string) error {
	release, err := s.acquire(invoiceID)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.ownedInvoice(invoiceID, userID); err != nil {
		return err
	}
	if err := s.customRepo.TransitionInvoice(invoiceID, action); err != nil {
		return err
	}
	s.notifyAdmin(event, map[string]interface{}{
		"invoice_id": invoiceID,
		"user_id":    userID,
	})
	s.publishChange(events.EntityInvoices, userID, invoiceID, "updated")
	return nil
}

// CompleteRequest closes out a paid request once the custom piece has been
// delivered (admin action). Only a request in payment_made can complete.
func (s *InvoiceService) CompleteRequest(requestID string) error {
	if err := s.customRepo.CompleteRequest(requestID); err != nil {
		return err
	}
	req, err := s.customRepo.GetRequestByID(requestID)
	if err == nil {
		s.publishChange(events.EntityCustomOrders, req.UserID, requestID, "updated")
	}
	return nil
}

// PayWithWallet settles an accepted invoice from the wallet. The balance
// check, debit, ledger entry and both status moves are one atomic operation;
// an uncovered balance surfaces ErrInsufficientFunds with nothing persisted.
func (s *InvoiceService) PayWithWallet(invoiceID, userID string) error {
	release, err := s.acquire(invoiceID)
	if err != nil {
		return err
	}
	defer release()

	invoice, err := s.ownedInvoice(invoiceID, userID)
	if err != nil {
		return err
	}

	txn := &models.Transaction{
		UserID:      userID,
		Direction:   models.DirectionDebit,
		Amount:      invoice.Amount,
		Currency:    currency.Base,
		Description: "Custom order invoice payment",
		Reference:   invoice.ID,
		Status:      "completed",
		Provider:    models.MethodWallet,
	}

	if err := s.customRepo.PayInvoice(invoiceID, txn, true); err != nil {
		return err
	}

	s.notifyAdmin("invoice.paid", map[string]interface{}{
		"invoice_id": invoiceID,
		"user_id":    userID,
		"method":     models.MethodWallet,
		"amount":     invoice.Amount,
	})
	s.publishChange(events.EntityInvoices, userID, invoiceID, "updated")
	s.publishChange(events.EntityTransactions, userID, txn.ID, "created")
	return nil
}

// InitiateGatewayPayment starts a gateway charge for an accepted invoice.
// The gateway is keyed by the invoice's quoted currency: base-currency
// quotes charge through Paystack, anything else through Flutterwave. The
// shopper sees the quoted original amount, never the base conversion.
func (s *InvoiceService) InitiateGatewayPayment(ctx context.Context, invoiceID, userID, email string) (*payment.InitiateResponse, error) {
	invoice, err := s.ownedInvoice(invoiceID, userID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceAccepted {
		return nil, repositories.ErrInvalidTransition
	}

	amount, code := invoice.DisplayAmount()
	gw := s.gateways.ForCurrency(code)
	return gw.Initiate(ctx, payment.InitiateRequest{
		Amount:    amount,
		Currency:  code,
		Email:     email,
		Reference: "inv-" + uuid.New().String(),
	})
}

// VerifyGatewayPayment confirms a provider callback for an invoice and
// records the payment. The wallet balance is never touched on this path. A
// charge that settled at the provider but could not be persisted returns
// ErrPaymentNotRecorded.
func (s *InvoiceService) VerifyGatewayPayment(ctx context.Context, invoiceID, userID, reference string) error {
	release, err := s.acquire(invoiceID)
	if err != nil {
		return err
	}
	defer release()

	invoice, err := s.ownedInvoice(invoiceID, userID)
	if err != nil {
		return err
	}

	_, code := invoice.DisplayAmount()
	gw := s.gateways.ForCurrency(code)
	result, err := gw.Verify(ctx, reference)
	if err != nil {
		return fmt.Errorf("failed to verify payment %s: %w", reference, err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("payment %s was not successful", reference)
	}

	txn := &models.Transaction{
		UserID:      userID,
		Direction:   models.DirectionDebit,
		Amount:      invoice.Amount,
		Currency:    result.Currency,
		Description: "Custom order invoice payment",
		Reference:   result.Reference,
		Status:      "completed",
		Provider:    gw.Name(),
	}
	if result.Currency != currency.Base {
		txn.OriginalAmount = result.Amount
	}

	if err := s.customRepo.PayInvoice(invoiceID, txn, false); err != nil {
		if err == repositories.ErrInvalidTransition {
			return err
		}
		log.Printf("CRITICAL: verified payment %s for invoice %s could not be recorded: %v", reference, invoiceID, err)
		return fmt.Errorf("%w: reference %s", ErrPaymentNotRecorded, reference)
	}

	s.notifyAdmin("invoice.paid", map[string]interface{}{
		"invoice_id": invoiceID,
		"user_id":    userID,
		"method":     gw.Name(),
		"reference":  result.Reference,
	})
	s.publishChange(events.EntityInvoices, userID, invoiceID, "updated")
	s.publishChange(events.EntityTransactions, userID, txn.ID, "created")
	return nil
}

// acquire takes the per-invoice re-entrancy gate.
func (s *InvoiceService) acquire(invoiceID string) (func(), error) {
	if _, busy := s.processing.LoadOrStore(invoiceID, struct{}{}); busy {
		return nil, fmt.Errorf("an operation is already in progress for invoice %s", invoiceID)
	}
	return func() { s.processing.Delete(invoiceID) }, nil
}

func (s *InvoiceService) notifyAdmin(event string, payload map[string]interface{}) {
	if s.notifier != nil {
		s.notifier.NotifyAdmin(event, payload)
	}
}

func (s *InvoiceService) publishChange(entityType, userID, entityID, action string) {
	if s.changes != nil {
		s.changes.Publish(events.Change{
			EntityType: entityType,
			UserID:     userID,
			EntityID:   entityID,
			Action:     action,
		})
	}
}
