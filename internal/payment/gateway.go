// Package payment wraps the external payment gateways behind one small
// interface. The store only consumes the provider's reference string and the
// success/failure outcome; everything else happens on the provider's side.
package payment

import (
	"context"

	"kasuwa/internal/currency"
)

// Statuses a verified charge can resolve to.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// InitiateRequest describes the charge to start at a gateway.
type InitiateRequest struct {
	Amount    float64 // in Currency
	Currency  string
	Email     string
	Reference string // our reference, echoed back on verification
}

// InitiateResponse is the gateway's handle for a started charge. The shopper
// is redirected to AuthorizationURL; nothing is recorded until Verify
// confirms the charge, so a shopper cancelling mid-flow is a no-op.
type InitiateResponse struct {
	Reference        string
	AuthorizationURL string
}

// VerifyResult is the settled outcome of a charge.
type VerifyResult struct {
	Reference string
	Status    string
	Amount    float64
	Currency  string
}

// Succeeded reports whether the charge settled successfully.
func (v *VerifyResult) Succeeded() bool {
	return v.Status == StatusSuccess
}

// Gateway is one payment provider.
type Gateway interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

// Selector picks the gateway for a settlement currency: base-currency
// charges go to Paystack, anything else to Flutterwave.
type Selector struct {
	Paystack    Gateway
	Flutterwave Gateway
}

// ForCurrency returns the gateway that settles the given currency.
func (s *Selector) ForCurrency(code string) Gateway {
	if code == currency.Base {
		return s.Paystack
	}
	return s.Flutterwave
}
