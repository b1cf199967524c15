package repositories

import "kasuwa/internal/models"

// Invoice actions accepted by TransitionInvoice.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// CustomOrderRepository defines the interface for custom order request and
// invoice data access. Status moves for an invoice and its request are one
// atomic operation each, so a retry after a partial failure cannot
// double-apply.
type CustomOrderRepository interface {
	CreateRequest(req *models.CustomOrderRequest) error
	GetRequestsByUser(userID string) ([]models.CustomOrderRequest, error)
	GetAllRequests() ([]models.CustomOrderRequest, error)
	GetRequestByID(id string) (*models.CustomOrderRequest, error)

	// CreateInvoice persists the invoice and moves its request to quoted in
	// one atomic operation. A request carries at most one invoice; quoting
	// again returns ErrInvalidTransition.
	CreateInvoice(invoice *models.Invoice) error
	GetInvoiceByID(id string) (*models.Invoice, error)
	GetInvoiceByRequest(requestID string) (*models.Invoice, error)

	// TransitionInvoice applies accept or reject. Guard: the invoice must be
	// in the sent state; otherwise ErrInvalidTransition and no change.
	TransitionInvoice(invoiceID string, action string) error

	// PayInvoice marks the invoice paid and its request payment_made, and
	// appends the ledger transaction, atomically. Guard: invoice accepted and
	// request not rejected, else ErrInvalidTransition. When debitWallet is
	// set the wallet balance is checked and debited in the same operation;
	// ErrInsufficientFunds leaves everything unchanged. Gateway payments
	// never touch the wallet.
	PayInvoice(invoiceID string, txn *models.Transaction, debitWallet bool) error

	// CompleteRequest closes out a fulfilled request. Guard: the request
	// must be in payment_made, else ErrInvalidTransition.
	CompleteRequest(requestID string) error
}
