// Package banklink coordinates the aggregator handshake (link token,
// consent, public-token exchange) and keeps persisted account snapshots
// synchronized.
package banklink

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"doughjo/internal/domain/account"
	"doughjo/internal/infrastructure/plaid"
)

// upstreamTimeout bounds every aggregator call; the network stack's own
// defaults are not relied upon.
const upstreamTimeout = 30 * time.Second

// Service orchestrates linking and balance synchronization.
type Service struct {
	client      plaid.ClientInterface
	accountRepo account.Repository
}

// NewService creates a new bank link service
func NewService(client plaid.ClientInterface, accountRepo account.Repository) *Service {
	return &Service{client: client, accountRepo: accountRepo}
}

// RefreshResult reports a best-effort refresh: a count of refreshed
// accounts, never an all-or-nothing failure.
type RefreshResult struct {
	UserID      int64    `json:"userId"`
	Refreshed   int      `json:"refreshed"`
	ItemsFailed int      `json:"itemsFailed"`
	Errors      []string `json:"errors,omitempty"`
}

// CreateLinkToken requests a short-lived link handle for the consent
// widget. The token has a short validity window and must not be persisted
// or reused across sessions.
func (s *Service) CreateLinkToken(ctx context.Context, userID int64) (string, error) {
	if !s.client.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	resp, err := s.client.CreateLinkToken(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		return "", classifyUpstream("create link token", err)
	}
	return resp.LinkToken, nil
}

// ExchangeAndPersist exchanges the one-time public token for a durable
// access token, fetches the accounts under the new item and inserts one row
// per account, all sharing that token. A persistence failure after a
// successful exchange is not repaired in place: the caller must re-link.
func (s *Service) ExchangeAndPersist(ctx context.Context, userID int64, publicToken, institutionName string) ([]*account.Account, error) {
	if !s.client.Configured() {
		return nil, ErrNotConfigured
	}
	if publicToken == "" {
		return nil, fmt.Errorf("%w: empty public token", ErrExchange)
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	exchange, err := s.client.ExchangePublicToken(exchangeCtx, publicToken)
	cancel()
	if err != nil {
		return nil, classifyUpstream("exchange public token", err)
	}

	accountsCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	upstream, err := s.client.GetAccounts(accountsCtx, exchange.AccessToken)
	cancel()
	if err != nil {
		return nil, classifyUpstream("fetch linked accounts", err)
	}

	params := make([]account.CreateParams, 0, len(upstream.Accounts))
	for _, a := range upstream.Accounts {
		currency := a.Balances.ISOCurrencyCode
		if currency == "" {
			currency = "USD"
		}
		p := account.CreateParams{
			UserID:          userID,
			PlaidAccountID:  a.AccountID,
			PlaidItemID:     exchange.ItemID,
			AccessToken:     exchange.AccessToken,
			Name:            a.Name,
			OfficialName:    a.OfficialName,
			AccountType:     a.Type,
			Subtype:         a.Subtype,
			Mask:            a.Mask,
			Balance:         a.Balances.CurrentOrZero(),
			Currency:        currency,
			InstitutionName: institutionName,
			InstitutionID:   upstream.Item.InstitutionID,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid aggregator account %s: %w", a.AccountID, err)
		}
		params = append(params, p)
	}

	created, err := s.accountRepo.CreateBatch(ctx, params)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	log.Printf("User %d: linked %d accounts under item %s (%s)", userID, len(created), exchange.ItemID, institutionName)
	return created, nil
}

// RefreshBalances reloads balances for all of the user's accounts, one
// upstream fetch per distinct access token rather than per account. A
// failure on one token group is logged and skipped; the other groups still
// refresh.
func (s *Service) RefreshBalances(ctx context.Context, userID int64) (*RefreshResult, error) {
	if !s.client.Configured() {
		return nil, ErrNotConfigured
	}

	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	result := &RefreshResult{UserID: userID}

	// Group by shared access token: one item, one upstream call.
	groups := make(map[string][]*account.Account)
	order := make([]string, 0)
	for _, a := range accounts {
		if _, seen := groups[a.AccessToken]; !seen {
			order = append(order, a.AccessToken)
		}
		groups[a.AccessToken] = append(groups[a.AccessToken], a)
	}

	for _, token := range order {
		refreshed, err := s.refreshTokenGroup(ctx, token)
		if err != nil {
			result.ItemsFailed++
			errMsg := fmt.Sprintf("failed to refresh item for account group: %v", err)
			result.Errors = append(result.Errors, errMsg)
			log.Printf("User %d: %s", userID, errMsg)
			continue
		}
		result.Refreshed += refreshed
	}

	log.Printf("User %d: balance refresh complete - Refreshed: %d, Failed groups: %d",
		userID, result.Refreshed, result.ItemsFailed)
	return result, nil
}

// refreshTokenGroup fetches current balances for one item and writes each
// matching account independently.
func (s *Service) refreshTokenGroup(ctx context.Context, accessToken string) (int, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	upstream, err := s.client.GetAccounts(fetchCtx, accessToken)
	cancel()
	if err != nil {
		return 0, classifyUpstream("fetch balances", err)
	}

	refreshed := 0
	for _, a := range upstream.Accounts {
		matched, err := s.accountRepo.UpdateBalanceByPlaidID(ctx, account.BalanceUpdate{
			PlaidAccountID: a.AccountID,
			Balance:        a.Balances.CurrentOrZero(),
		})
		if err != nil {
			log.Printf("Failed to update balance for aggregator account %s: %v", a.AccountID, err)
			continue
		}
		refreshed += int(matched)
	}
	return refreshed, nil
}
