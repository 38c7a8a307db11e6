package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// CardlinkProvider creates hosted checkout sessions against the Cardlink
// merchant API. The buyer is redirected to PageURL; payment confirmation
// arrives on our webhook endpoint, signed with the shared webhook secret.
type CardlinkProvider struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewCardlinkProvider(baseURL, apiKey string, timeout time.Duration) *CardlinkProvider {
	if baseURL == "" {
		baseURL = "https://api.cardlink.io"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CardlinkProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *CardlinkProvider) Name() string { return "cardlink" }

type cardlinkSessionReq struct {
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type cardlinkSessionResp struct {
	SessionID string `json:"session_id"`
	PageURL   string `json:"page_url"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
	Message   string `json:"message"`
}

func (p *CardlinkProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	meta := map[string]string{"order_id": strconv.FormatUint(uint64(req.OrderID), 10)}
	for k, v := range req.Metadata {
		meta[k] = v
	}
	payload := cardlinkSessionReq{
		Amount:      req.Amount.StringFixed(2),
		Currency:    req.Currency,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Metadata:    meta,
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	log.Printf("[cardlink] POST /v1/checkout/sessions order_id=%d amount=%s %s",
		req.OrderID, payload.Amount, payload.Currency)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cardlink session: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("cardlink session: %d %s", resp.StatusCode, string(respBody))
	}
	var out cardlinkSessionResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" || out.PageURL == "" {
		return nil, fmt.Errorf("cardlink session: incomplete response: %s", string(respBody))
	}
	session := &CheckoutSession{ID: out.SessionID, URL: out.PageURL}
	if t, err := time.Parse(time.RFC3339, out.ExpiresAt); err == nil {
		session.ExpiresAt = t
	}
	return session, nil
}
