package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"doughjo/internal/domain/banklink"
)

// Job is a unit of background work processed by the worker pool.
type Job interface {
	// Execute runs the job. The context carries the pool's timeout.
	Execute(ctx context.Context) error

	// UserID identifies the job's user for logging and metrics.
	UserID() string

	// Description is a human-readable job summary.
	Description() string
}

// BalanceRefreshJob refreshes all linked account balances for one user.
type BalanceRefreshJob struct {
	userID      int64
	linkService *banklink.Service
}

// NewBalanceRefreshJob creates a refresh job for a user
func NewBalanceRefreshJob(userID int64, linkService *banklink.Service) *BalanceRefreshJob {
	return &BalanceRefreshJob{userID: userID, linkService: linkService}
}

// Execute runs the balance refresh. Per-item failures inside the refresh are
// tolerated; the job only fails when every item fails or the listing itself
// errors, which marks it for the next scheduled round.
func (j *BalanceRefreshJob) Execute(ctx context.Context) error {
	log.Printf("Starting balance refresh for user %d", j.userID)

	result, err := j.linkService.RefreshBalances(ctx, j.userID)
	if err != nil {
		log.Printf("Balance refresh failed for user %d: %v", j.userID, err)
		return fmt.Errorf("refresh failed: %w", err)
	}

	if result.ItemsFailed > 0 {
		log.Printf("Balance refresh for user %d completed with errors: Refreshed=%d, ItemsFailed=%d",
			j.userID, result.Refreshed, result.ItemsFailed)
		if result.Refreshed == 0 {
			return fmt.Errorf("refresh failed for all %d items", result.ItemsFailed)
		}
		return nil
	}

	log.Printf("Balance refresh for user %d completed successfully: Refreshed=%d",
		j.userID, result.Refreshed)
	return nil
}

// UserID returns the user ID associated with this job
func (j *BalanceRefreshJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job
func (j *BalanceRefreshJob) Description() string {
	return fmt.Sprintf("Balance refresh for user %d", j.userID)
}
