package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FlutterwaveClient charges non-base-currency payments through the
// Flutterwave v3 API.
type FlutterwaveClient struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	redirectURL string
}

// FlutterwaveConfig holds Flutterwave credentials.
type FlutterwaveConfig struct {
	BaseURL     string
	SecretKey   string
	RedirectURL string
}

// NewFlutterwaveClient creates a Flutterwave-backed Gateway.
func NewFlutterwaveClient(cfg FlutterwaveConfig) *FlutterwaveClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com/v3"
	}
	return &FlutterwaveClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		secretKey:   cfg.SecretKey,
		redirectURL: cfg.RedirectURL,
	}
}

// Name returns the provider tag recorded on transactions.
func (c *FlutterwaveClient) Name() string {
	return "flutterwave"
}

// Initiate starts a hosted payment and returns its checkout link.
func (c *FlutterwaveClient) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	payload := map[string]interface{}{
		"tx_ref":       req.Reference,
		"amount":       fmt.Sprintf("%.2f", req.Amount),
		"currency":     req.Currency,
		"redirect_url": c.redirectURL,
		"customer": map[string]string{
			"email": req.Email,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payment payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments", bytes.NewBuffer(body))
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
		return nil, fmt.Errorf("flutterwave payments returned %d: %s", resp.StatusCode, string(raw))
	}

	var res struct {
		Status string `json:"status"`
		Data   struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode payments response: %w", err)
	}
	if res.Status != "success" {
		return nil, fmt.Errorf("flutterwave rejected payment reference %s", req.Reference)
	}

	return &InitiateResponse{
		Reference:        req.Reference,
		AuthorizationURL: res.Data.Link,
	}, nil
}

// Verify resolves the settled outcome of a payment by our tx_ref.
func (c *FlutterwaveClient) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	endpoint := c.baseURL + "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		return nil, fmt.Errorf("flutterwave verify returned %d: %s", resp.StatusCode, string(raw))
	}

	var res struct {
		Status string `json:"status"`
		Data   struct {
			Status   string  `json:"status"`
			TxRef    string  `json:"tx_ref"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	status := StatusFailed
	switch res.Data.Status {
	case "successful":
		status = StatusSuccess
	case "pending":
		status = StatusPending
	}

	return &VerifyResult{
		Reference: res.Data.TxRef,
		Status:    status,
		Amount:    res.Data.Amount,
		Currency:  res.Data.Currency,
	}, nil
}
