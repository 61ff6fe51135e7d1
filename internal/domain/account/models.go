package account

import (
	"errors"
	"time"
)

// Allowed aggregator account types (Plaid taxonomy).
var accountTypes = map[string]struct{}{
	"depository": {},
	"credit":     {},
	"loan":       {},
	"investment": {},
	"other":      {},
}

// Domain errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// Account is one linked bank account. Many accounts share one access token:
// the token is scoped to the aggregator item (one bank login), not to the
// account. AccessToken is server-side secret material and is never
// serialized into API responses.
type Account struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	PlaidAccountID  string    `json:"plaidAccountId"`
	PlaidItemID     string    `json:"plaidItemId"`
	AccessToken     string    `json:"-"`
	Name            string    `json:"name"`
	OfficialName    string    `json:"officialName,omitempty"`
	AccountType     string    `json:"accountType"`
	Subtype         string    `json:"subtype,omitempty"`
	Mask            string    `json:"mask,omitempty"`
	Balance         float64   `json:"balance"`
	Currency        string    `json:"currency"`
	InstitutionName string    `json:"institutionName"`
	InstitutionID   string    `json:"institutionId,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateParams contains parameters for persisting a newly linked account.
type CreateParams struct {
	UserID          int64
	PlaidAccountID  string
	PlaidItemID     string
	AccessToken     string
	Name            string
	OfficialName    string
	AccountType     string
	Subtype         string
	Mask            string
	Balance         float64
	Currency        string
	InstitutionName string
	InstitutionID   string
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.PlaidAccountID == "" {
		return errors.New("aggregator account ID is required")
	}
	if p.AccessToken == "" {
		return errors.New("access token is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if !IsValidAccountType(p.AccountType) {
		return ErrInvalidAccountType
	}
	return nil
}

// BalanceUpdate carries one refreshed balance, keyed by the aggregator's
// account id so the refresh path and the webhook path share one write.
type BalanceUpdate struct {
	PlaidAccountID string
	Balance        float64
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}
