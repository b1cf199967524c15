package repositories

import (
	"fmt"
	"sync"
	"time"

	"kasuwa/internal/models"

	"github.com/google/uuid"
)

// MockCustomOrderRepository is an in-memory implementation of
// CustomOrderRepository. Wallet payments debit through the shared
// MockProfileRepository so scenario tests observe one consistent balance.
type MockCustomOrderRepository struct {
	requests map[string]models.CustomOrderRequest
	invoices map[string]models.Invoice
	profiles *MockProfileRepository
	txns     *MockTransactionRepository
	mu       sync.Mutex
}

// NewMockCustomOrderRepository creates a new instance of MockCustomOrderRepository.
func NewMockCustomOrderRepository(profiles *MockProfileRepository, txns *MockTransactionRepository) *MockCustomOrderRepository {
	return &MockCustomOrderRepository{
		requests: make(map[string]models.CustomOrderRequest),
		invoices: make(map[string]models.Invoice),
		profiles: profiles,
		txns:     txns,
	}
}

// CreateRequest adds a new request in the under_review state.
func (r *MockCustomOrderRepository) CreateRequest(req *models.CustomOrderRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.Status = models.RequestUnderReview
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.requests[req.ID] = *req
	return nil
}

// GetRequestsByUser returns a user's requests.
func (r *MockCustomOrderRepository) GetRequestsByUser(userID string) ([]models.CustomOrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reqs []models.CustomOrderRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

// GetAllRequests returns every request.
func (r *MockCustomOrderRepository) GetAllRequests() ([]models.CustomOrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reqs := make([]models.CustomOrderRequest, 0, len(r.requests))
	for _, req := range r.requests {
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// GetRequestByID returns a request by its ID.
func (r *MockCustomOrderRepository) GetRequestByID(id string) (*models.CustomOrderRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("custom request with ID %s not found", id)
	}
	return &req, nil
}

// CreateInvoice adds the invoice in the sent state and moves its request
// to quoted.
func (r *MockCustomOrderRepository) CreateInvoice(invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[invoice.RequestID]
	if !ok {
		return fmt.Errorf("custom request with ID %s not found", invoice.RequestID)
	}
	for _, existing := range r.invoices {
		if existing.RequestID == invoice.RequestID {
			return ErrInvalidTransition
		}
	}
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	invoice.Status = models.InvoiceSent
	r.invoices[invoice.ID] = *invoice
	req.Status = models.RequestQuoted
	req.UpdatedAt = time.Now()
	r.requests[req.ID] = req
	return nil
}

// GetInvoiceByID returns an invoice by its ID.
func (r *MockCustomOrderRepository) GetInvoiceByID(id string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice with ID %s not found", id)
	}
	return &invoice, nil
}

// GetInvoiceByRequest returns the invoice attached to a request, or nil.
func (r *MockCustomOrderRepository) GetInvoiceByRequest(requestID string) (*models.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, invoice := range r.invoices {
		if invoice.RequestID == requestID {
			out := invoice
			return &out, nil
		}
	}
	return nil, nil
}

// TransitionInvoice applies accept or reject under the sent-state guard.
func (r *MockCustomOrderRepository) TransitionInvoice(invoiceID string, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return fmt.Errorf("invoice with ID %s not found", invoiceID)
	}
	if invoice.Status != models.InvoiceSent {
		return ErrInvalidTransition
	}

	req := r.requests[invoice.RequestID]
	switch action {
	case ActionAccept:
		invoice.Status = models.InvoiceAccepted
		req.Status = models.RequestAccepted
	case ActionReject:
		invoice.Status = models.InvoiceRejected
		req.Status = models.RequestRejected
	default:
		return fmt.Errorf("unknown invoice action: %s", action)
	}
	req.UpdatedAt = time.Now()
	r.invoices[invoiceID] = invoice
	r.requests[req.ID] = req
	return nil
}

// PayInvoice records a payment under the accepted-invoice guard. The wallet
// is only touched when debitWallet is set.
func (r *MockCustomOrderRepository) PayInvoice(invoiceID string, txn *models.Transaction, debitWallet bool) error {
	r.mu.Lock()
	invoice, ok := r.invoices[invoiceID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("invoice with ID %s not found", invoiceID)
	}
	req := r.requests[invoice.RequestID]
	if invoice.Status != models.InvoiceAccepted || req.Status == models.RequestRejected {
		r.mu.Unlock()
		return ErrInvalidTransition
	}
	r.mu.Unlock()

	if debitWallet {
		if r.profiles == nil {
			return fmt.Errorf("mock custom order repository has no profile repository for wallet debit")
		}
		if err := r.profiles.debit(txn.UserID, txn.Amount); err != nil {
			return err
		}
	}
	if r.txns != nil {
		if err := r.txns.Append(txn); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	invoice.Status = models.InvoicePaid
	invoice.PaymentMethod = txn.Provider
	invoice.PaymentRef = txn.Reference
	req.Status = models.RequestPaymentMade
	req.UpdatedAt = time.Now()
	r.invoices[invoiceID] = invoice
	r.requests[req.ID] = req
	return nil
}

// CompleteRequest moves a request from payment_made to completed.
func (r *MockCustomOrderRepository) CompleteRequest(requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return fmt.Errorf("custom request with ID %s not found", requestID)
	}
	if req.Status != models.RequestPaymentMade {
		return ErrInvalidTransition
	}
	req.Status = models.RequestCompleted
	req.UpdatedAt = time.Now()
	r.requests[requestID] = req
	return nil
}
