package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create registers a new user
	Create(ctx context.Context, params CreateParams) (*User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListWithLinkedAccounts returns the ids of users that have at least
	// one linked bank account (the scheduler's refresh population).
	ListWithLinkedAccounts(ctx context.Context) ([]int64, error)

	// AddXP increments the user's experience points and returns the new total
	AddXP(ctx context.Context, userID int64, delta int) (int, error)
}
