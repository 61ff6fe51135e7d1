package scheduler

import (
	"context"
	"log"
	"time"

	"doughjo/internal/domain/banklink"
	"doughjo/internal/domain/user"
	"doughjo/internal/shared/config"
)

// Scheduler enqueues a balance refresh for every user with linked accounts
// at the configured daily times.
type Scheduler struct {
	cfg         config.SchedulerConfig
	pool        *WorkerPool
	userRepo    user.Repository
	linkService *banklink.Service
	done        chan struct{}
}

// New creates a scheduler with its own worker pool.
func New(cfg config.SchedulerConfig, userRepo user.Repository, linkService *banklink.Service) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		pool:        NewWorkerPool(cfg.WorkerCount, cfg.JobDelay, cfg.QueueSize),
		userRepo:    userRepo,
		linkService: linkService,
		done:        make(chan struct{}),
	}
}

// Start launches the workers and the daily schedule loop.
func (s *Scheduler) Start() {
	s.pool.Start()

	if s.cfg.RunOnStartup {
		go s.enqueueAll()
	}

	go s.loop()
}

// Stop drains the schedule loop and shuts down the pool.
func (s *Scheduler) Stop(timeout time.Duration) {
	close(s.done)
	s.pool.ShutdownWithTimeout(timeout)
}

func (s *Scheduler) loop() {
	for {
		next, ok := s.nextRun(time.Now())
		if !ok {
			log.Println("Scheduler: no valid schedule times configured, schedule loop idle")
			return
		}

		log.Printf("Scheduler: next balance refresh at %s", next.Format(time.RFC3339))

		select {
		case <-s.done:
			return
		case <-time.After(time.Until(next)):
			s.enqueueAll()
		}
	}
}

// nextRun returns the earliest upcoming schedule time after now.
func (s *Scheduler) nextRun(now time.Time) (time.Time, bool) {
	var next time.Time
	found := false

	for _, raw := range s.cfg.ScheduleTimes {
		at, err := time.Parse("15:04", raw)
		if err != nil {
			log.Printf("Scheduler: invalid schedule time %q, skipping", raw)
			continue
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.Add(24 * time.Hour)
		}
		if !found || candidate.Before(next) {
			next = candidate
			found = true
		}
	}
	return next, found
}

// enqueueAll submits one refresh job per user holding linked accounts.
func (s *Scheduler) enqueueAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userIDs, err := s.userRepo.ListWithLinkedAccounts(ctx)
	if err != nil {
		log.Printf("Scheduler: failed to list users for refresh: %v", err)
		return
	}
	if len(userIDs) == 0 {
		log.Println("Scheduler: no users with linked accounts, nothing to refresh")
		return
	}

	jobs := make([]Job, 0, len(userIDs))
	for _, id := range userIDs {
		jobs = append(jobs, NewBalanceRefreshJob(id, s.linkService))
	}
	s.pool.SubmitBatch(jobs)
}
