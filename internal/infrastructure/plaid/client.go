// Package plaid implements the bank-data aggregator client: link-token
// creation, public-token exchange and account fetches.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doughjo/internal/shared/config"
)

const (
	defaultTimeout = 30 * time.Second

	linkTokenPath = "/link/token/create"
	exchangePath  = "/item/public_token/exchange"
	accountsPath  = "/accounts/get"
)

var environmentHosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// Client handles communication with the aggregator API. Credentials travel
// in the request body, never in a client-reachable surface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
	clientName string
	webhookURL string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new aggregator API client for the configured
// environment.
func NewClient(cfg config.PlaidConfig) *Client {
	baseURL, ok := environmentHosts[cfg.Environment]
	if !ok {
		baseURL = environmentHosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
		clientName: cfg.ClientName,
		webhookURL: cfg.WebhookURL,
	}
}

// Configured reports whether aggregator credentials are present. Callers
// must check this before any network call.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.secret != ""
}

// APIError is a non-2xx response from the aggregator, carrying its status
// code and error body for diagnostics.
type APIError struct {
	StatusCode   int    `json:"-"`
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
}

// IsInvalidPublicToken reports whether the error means the one-time public
// token was invalid, expired or already used.
func IsInvalidPublicToken(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	switch apiErr.ErrorCode {
	case "INVALID_PUBLIC_TOKEN", "EXPIRED_PUBLIC_TOKEN", "PUBLIC_TOKEN_EXCHANGED":
		return true
	}
	return false
}

// LinkTokenResponse is the short-lived handle for the consent widget.
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
	RequestID  string `json:"request_id"`
}

// ExchangeResponse carries the durable access token for one item.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

// AccountsResponse is the account list under one access token.
type AccountsResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// Account is one aggregator-reported account.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Mask         string   `json:"mask"`
	Balances     Balances `json:"balances"`
}

// Balances holds the reported balance figures.
type Balances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	Limit           *float64 `json:"limit"`
	ISOCurrencyCode string   `json:"iso_currency_code"`
}

// CurrentOrZero returns the current balance, or 0 when the aggregator omitted it.
func (b Balances) CurrentOrZero() float64 {
	if b.Current == nil {
		return 0
	}
	return *b.Current
}

// Item identifies the bank connection the accounts belong to.
type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

type linkTokenRequest struct {
	ClientID     string        `json:"client_id"`
	Secret       string        `json:"secret"`
	ClientName   string        `json:"client_name"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
	CountryCodes []string      `json:"country_codes"`
	Language     string        `json:"language"`
	Webhook      string        `json:"webhook,omitempty"`
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type accountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// CreateLinkToken requests a short-lived link token scoped to one end user.
// The token must be handed straight to the consent widget, never persisted.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error) {
	req := linkTokenRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		ClientName:   c.clientName,
		User:         linkTokenUser{ClientUserID: clientUserID},
		Products:     []string{"auth", "transactions"},
		CountryCodes: []string{"US"},
		Language:     "en",
		Webhook:      c.webhookURL,
	}

	var resp LinkTokenResponse
	if err := c.post(ctx, linkTokenPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangePublicToken exchanges the one-time public token for a durable
// access token. The public token is single-use and short-lived, so the
// exchange must happen immediately after the consent callback.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error) {
	req := exchangeRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}

	var resp ExchangeResponse
	if err := c.post(ctx, exchangePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccounts fetches all accounts under one access token. One call covers
// every account of the item, which is why refreshes batch by token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	req := accountsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}

	var resp AccountsResponse
	if err := c.post(ctx, accountsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			apiErr.ErrorMessage = string(body)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
