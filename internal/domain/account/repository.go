package account

import "context"

// Repository defines the interface for linked-account data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	// CreateBatch inserts one row per aggregator-reported account. All rows
	// share the access token of the item they were linked under.
	CreateBatch(ctx context.Context, params []CreateParams) ([]*Account, error)

	// ListByUserID retrieves all linked accounts for a specific user
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// ListByItemID retrieves the accounts under one aggregator item
	ListByItemID(ctx context.Context, itemID string) ([]*Account, error)

	// Delete removes one account scoped by both account id and owning user
	// id. Returns the number of rows deleted (0 when the account does not
	// exist or belongs to another user).
	Delete(ctx context.Context, userID, accountID int64) (int64, error)

	// UpdateBalanceByPlaidID updates balance and last_updated for the row
	// matching the aggregator's account id. Both the refresh path and the
	// webhook path go through this single write.
	UpdateBalanceByPlaidID(ctx context.Context, update BalanceUpdate) (int64, error)
}
