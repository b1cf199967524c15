package repositories

import (
	"fmt"
	"time"

	"kasuwa/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCustomOrderRepository is a GORM implementation of CustomOrderRepository.
type GORMCustomOrderRepository struct {
	db *gorm.DB
}

// NewGORMCustomOrderRepository creates a new instance of GORMCustomOrderRepository.
func NewGORMCustomOrderRepository(db *gorm.DB) *GORMCustomOrderRepository {
	return &GORMCustomOrderRepository{
		db: db,
	}
}

// CreateRequest persists a new custom order request in the under_review state.
func (r *GORMCustomOrderRepository) CreateRequest(req *models.CustomOrderRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.Status = models.RequestUnderReview
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create custom order request: %w", err)
	}
	return nil
}

// GetRequestsByUser retrieves a user's custom order requests, newest first.
func (r *GORMCustomOrderRepository) GetRequestsByUser(userID string) ([]models.CustomOrderRequest, error) {
	var reqs []models.CustomOrderRequest
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to get custom requests for user %s: %w", userID, err)
	}
	return reqs, nil
}

// GetAllRequests retrieves every custom order request, newest first.
func (r *GORMCustomOrderRepository) GetAllRequests() ([]models.CustomOrderRequest, error) {
	var reqs []models.CustomOrderRequest
	if err := r.db.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to get custom requests: %w", err)
	}
	return reqs, nil
}

// GetRequestByID retrieves a custom order request by its ID.
func (r *GORMCustomOrderRepository) GetRequestByID(id string) (*models.CustomOrderRequest, error) {
	var req models.CustomOrderRequest
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("custom request with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get custom request by ID %s: %w", id, err)
	}
	return &req, nil
}

// CreateInvoice persists the invoice in the sent state and moves its request
// to quoted in one database transaction.
func (r *GORMCustomOrderRepository) CreateInvoice(invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	invoice.Status = models.InvoiceSent
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var req models.CustomOrderRequest
		if err := tx.First(&req, "id = ?", invoice.RequestID).Error; err != nil {
			return fmt.Errorf("custom request with ID %s not found", invoice.RequestID)
		}
		// One invoice per request: a second quote is an invalid transition,
		// not a constraint violation.
		var existing int64
		if err := tx.Model(&models.Invoice{}).Where("request_id = ?", invoice.RequestID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrInvalidTransition
		}
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		return tx.Model(&models.CustomOrderRequest{}).Where("id = ?", invoice.RequestID).
			Updates(map[string]interface{}{"status": models.RequestQuoted, "updated_at": time.Now()}).Error
	})
	if err == ErrInvalidTransition {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetInvoiceByID retrieves an invoice by its ID.
func (r *GORMCustomOrderRepository) GetInvoiceByID(id string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invoice with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get invoice by ID %s: %w", id, err)
	}
	return &invoice, nil
}

// GetInvoiceByRequest retrieves the invoice attached to a request, or nil
// when the request has not been quoted yet.
func (r *GORMCustomOrderRepository) GetInvoiceByRequest(requestID string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, "request_id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice for request %s: %w", requestID, err)
	}
	return &invoice, nil
}

// TransitionInvoice applies accept or reject to an invoice and moves its
// request in lockstep, inside one database transaction. The guard (invoice
// must be sent) is checked inside the transaction, so a concurrent or
// repeated call observes ErrInvalidTransition and changes nothing.
func (r *GORMCustomOrderRepository) TransitionInvoice(invoiceID string, action string) error {
	var invoiceStatus, requestStatus string
	switch action {
	case ActionAccept:
		invoiceStatus, requestStatus = models.InvoiceAccepted, models.RequestAccepted
	case ActionReject:
		invoiceStatus, requestStatus = models.InvoiceRejected, models.RequestRejected
	default:
		return fmt.Errorf("unknown invoice action: %s", action)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("invoice with ID %s not found", invoiceID)
			}
			return err
		}
		if invoice.Status != models.InvoiceSent {
			return ErrInvalidTransition
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
			Update("status", invoiceStatus).Error; err != nil {
			return err
		}
		return tx.Model(&models.CustomOrderRequest{}).Where("id = ?", invoice.RequestID).
			Updates(map[string]interface{}{"status": requestStatus, "updated_at": time.Now()}).Error
	})
	if err == ErrInvalidTransition {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to transition invoice %s: %w", invoiceID, err)
	}
	return nil
}

// PayInvoice records an invoice payment: ledger entry, optional wallet debit,
// invoice -> paid, request -> payment_made, all in one database transaction.
// Gateway payments pass debitWallet=false and never touch the wallet balance.
func (r *GORMCustomOrderRepository) PayInvoice(invoiceID string, txn *models.Transaction, debitWallet bool) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("invoice with ID %s not found", invoiceID)
			}
			return err
		}
		if invoice.Status != models.InvoiceAccepted {
			return ErrInvalidTransition
		}
		var req models.CustomOrderRequest
		if err := tx.First(&req, "id = ?", invoice.RequestID).Error; err != nil {
			return err
		}
		if req.Status == models.RequestRejected {
			return ErrInvalidTransition
		}

		if debitWallet {
			var profile models.Profile
			if err := tx.First(&profile, "user_id = ?", txn.UserID).Error; err != nil {
				return fmt.Errorf("profile for user %s not found: %w", txn.UserID, err)
			}
			if profile.WalletBalance < txn.Amount {
				return ErrInsufficientFunds
			}
			if err := tx.Model(&models.Profile{}).Where("user_id = ?", txn.UserID).
				Update("wallet_balance", gorm.Expr("wallet_balance - ?", txn.Amount)).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoiceID).
			Updates(map[string]interface{}{
				"status":         models.InvoicePaid,
				"payment_method": txn.Provider,
				"payment_ref":    txn.Reference,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.CustomOrderRequest{}).Where("id = ?", invoice.RequestID).
			Updates(map[string]interface{}{"status": models.RequestPaymentMade, "updated_at": time.Now()}).Error
	})
	if err == ErrInvalidTransition || err == ErrInsufficientFunds {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to pay invoice %s: %w", invoiceID, err)
	}
	return nil
}

// CompleteRequest moves a request from payment_made to completed.
func (r *GORMCustomOrderRepository) CompleteRequest(requestID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var req models.CustomOrderRequest
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("custom request with ID %s not found", requestID)
			}
			return err
		}
		if req.Status != models.RequestPaymentMade {
			return ErrInvalidTransition
		}
		return tx.Model(&models.CustomOrderRequest{}).Where("id = ?", requestID).
			Updates(map[string]interface{}{"status": models.RequestCompleted, "updated_at": time.Now()}).Error
	})
	if err == ErrInvalidTransition {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to complete request %s: %w", requestID, err)
	}
	return nil
}
