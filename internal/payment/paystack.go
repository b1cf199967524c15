package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaystackClient charges base-currency (NGN) payments through the Paystack
// transaction API.
type PaystackClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// PaystackConfig holds Paystack credentials.
type PaystackConfig struct {
	BaseURL   string
	SecretKey string
}

// NewPaystackClient creates a Paystack-backed Gateway.
func NewPaystackClient(cfg PaystackConfig) *PaystackClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
	}
}

// Name returns the provider tag recorded on transactions.
func (c *PaystackClient) Name() string {
	return "paystack"
}

// Initiate starts a charge. Paystack wants amounts in kobo.
func (c *PaystackClient) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	payload := map[string]interface{}{
		"email":     req.Email,
		"amount":    int64(req.Amount * 100),
		"currency":  req.Currency,
		"reference": req.Reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal initiate payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paystack initialize returned %d: %s", resp.StatusCode, string(raw))
	}

	var res struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}
	if !res.Status {
		return nil, fmt.Errorf("paystack initialize rejected reference %s", req.Reference)
	}

	return &InitiateResponse{
		Reference:        res.Data.Reference,
		AuthorizationURL: res.Data.AuthorizationURL,
	}, nil
}

// Verify resolves the settled outcome of a charge.
func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paystack verify returned %d: %s", resp.StatusCode, string(raw))
	}

	var res struct {
		Status bool `json:"status"`
		Data   struct {
			Status    string  `json:"status"`
			Reference string  `json:"reference"`
			Amount    float64 `json:"amount"` // kobo
			Currency  string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	status := StatusFailed
	switch res.Data.Status {
	case "success":
		status = StatusSuccess
	case "pending", "ongoing":
		status = StatusPending
	}

	return &VerifyResult{
		Reference: res.Data.Reference,
		Status:    status,
		Amount:    res.Data.Amount / 100,
		Currency:  res.Data.Currency,
	}, nil
}
