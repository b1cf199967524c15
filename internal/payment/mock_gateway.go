package payment

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is an in-memory Gateway for tests and local development.
// Charges succeed on Verify unless the reference was marked to fail.
type MockGateway struct {
	name      string
	initiated map[string]InitiateRequest
	failing   map[string]bool
	mu        sync.Mutex
}

// NewMockGateway creates a MockGateway reporting the given provider name.
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{
		name:      name,
		initiated: make(map[string]InitiateRequest),
		failing:   make(map[string]bool),
	}
}

// Name returns the configured provider name.
func (g *MockGateway) Name() string {
	return g.name
}

// FailReference marks a reference so its verification resolves as failed.
func (g *MockGateway) FailReference(reference string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[reference] = true
}

// Initiate records the charge and hands back a fake authorization URL.
func (g *MockGateway) Initiate(_ context.Context, req InitiateRequest) (*InitiateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initiated[req.Reference] = req
	return &InitiateResponse{
		Reference:        req.Reference,
		AuthorizationURL: "https://checkout.example.test/" + req.Reference,
	}, nil
}

// Verify resolves a previously initiated charge.
func (g *MockGateway) Verify(_ context.Context, reference string) (*VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	req, ok := g.initiated[reference]
	if !ok {
		return nil, fmt.Errorf("unknown reference %s", reference)
	}
	status := StatusSuccess
	if g.failing[reference] {
		status = StatusFailed
	}
	return &VerifyResult{
		Reference: reference,
		Status:    status,
		Amount:    req.Amount,
		Currency:  req.Currency,
	}, nil
}
