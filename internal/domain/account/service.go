package account

import (
	"context"
	"errors"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListAccounts retrieves all linked accounts for a user.
func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]*Account, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// RemoveAccount deletes exactly one account, scoped by both ids so a user
// can never delete another tenant's row.
func (s *Service) RemoveAccount(ctx context.Context, userID, accountID int64) error {
	if userID <= 0 || accountID <= 0 {
		return ErrInvalidInput
	}

	deleted, err := s.repo.Delete(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrAccountNotFound
	}
	return nil
}
