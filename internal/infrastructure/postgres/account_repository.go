package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"doughjo/internal/domain/account"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, user_id, plaid_account_id, plaid_item_id, plaid_access_token,
	name, official_name, account_type, subtype, mask, balance, currency,
	institution_name, institution_id, last_updated, created_at
`

// CreateBatch inserts every account from one exchange inside a single
// transaction. Re-linking an institution upserts on plaid_account_id so the
// rows pick up the fresh access token instead of duplicating.
func (r *AccountRepository) CreateBatch(ctx context.Context, params []account.CreateParams) ([]*account.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bank_accounts (
			user_id, plaid_account_id, plaid_item_id, plaid_access_token,
			name, official_name, account_type, subtype, mask, balance, currency,
			institution_name, institution_id, last_updated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (plaid_account_id) DO UPDATE SET
			plaid_item_id = EXCLUDED.plaid_item_id,
			plaid_access_token = EXCLUDED.plaid_access_token,
			name = EXCLUDED.name,
			official_name = EXCLUDED.official_name,
			balance = EXCLUDED.balance,
			last_updated = NOW()
		RETURNING ` + accountColumns

	accounts := make([]*account.Account, 0, len(params))
	for _, p := range params {
		row := tx.QueryRowContext(ctx, query,
			p.UserID, p.PlaidAccountID, p.PlaidItemID, p.AccessToken,
			p.Name, nullIfEmpty(p.OfficialName), p.AccountType, nullIfEmpty(p.Subtype),
			nullIfEmpty(p.Mask), p.Balance, p.Currency,
			nullIfEmpty(p.InstitutionName), nullIfEmpty(p.InstitutionID),
		)

		acc, err := scanAccount(row)
		if err != nil {
			return nil, fmt.Errorf("failed to insert account %s: %w", p.PlaidAccountID, err)
		}
		accounts = append(accounts, acc)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account batch: %w", err)
	}
	return accounts, nil
}

// ListByUserID retrieves all linked accounts for a user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY institution_name, name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// ListByItemID retrieves all accounts belonging to one aggregator item
func (r *AccountRepository) ListByItemID(ctx context.Context, itemID string) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE plaid_item_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by item: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// Delete removes an account. The user_id predicate is load-bearing: a row
// belonging to another user must never match, whatever id is supplied.
func (r *AccountRepository) Delete(ctx context.Context, userID, accountID int64) (int64, error) {
	query := `
		DELETE FROM bank_accounts
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, accountID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

// UpdateBalanceByPlaidID writes a refreshed balance, keyed by the
// aggregator's account id.
func (r *AccountRepository) UpdateBalanceByPlaidID(ctx context.Context, update account.BalanceUpdate) (int64, error) {
	query := `
		UPDATE bank_accounts
		SET balance = $1, last_updated = NOW()
		WHERE plaid_account_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, update.Balance, update.PlaidAccountID)
	if err != nil {
		return 0, fmt.Errorf("failed to update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	var officialName, subtype, mask, institutionName, institutionID sql.NullString
	var lastUpdated sql.NullTime

	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.PlaidAccountID, &acc.PlaidItemID, &acc.AccessToken,
		&acc.Name, &officialName, &acc.AccountType, &subtype, &mask, &acc.Balance,
		&acc.Currency, &institutionName, &institutionID, &lastUpdated, &acc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	acc.OfficialName = officialName.String
	acc.Subtype = subtype.String
	acc.Mask = mask.String
	acc.InstitutionName = institutionName.String
	acc.InstitutionID = institutionID.String
	acc.LastUpdated = lastUpdated.Time
	return &acc, nil
}

func collectAccounts(rows *sql.Rows) ([]*account.Account, error) {
	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
