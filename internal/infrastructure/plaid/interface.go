package plaid

import "context"

// ClientInterface defines the aggregator operations consumed by the link
// orchestrator. Lets services accept mocks in tests.
type ClientInterface interface {
	Configured() bool
	CreateLinkToken(ctx context.Context, clientUserID string) (*LinkTokenResponse, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResponse, error)
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error)
}
