package scheduler

import (
	"errors"
	"log"
	"time"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
	"github.com/taskosaur/mailroom/pkg/queue"
)

// Scheduler periodically enqueues sync jobs for every sync-enabled account
// whose per-inbox interval has elapsed. It only produces jobs; the runner
// bounds how many execute at once.
type Scheduler struct {
	accounts repository.MailAccountRepository
	inboxes  repository.InboxRepository
	runner   queue.JobRunner
	interval time.Duration
	stopChan chan struct{}
}

// NewScheduler creates a scheduler ticking at the given interval.
func NewScheduler(accounts repository.MailAccountRepository, inboxes repository.InboxRepository, runner queue.JobRunner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		accounts: accounts,
		inboxes:  inboxes,
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called. The first tick happens after
// one full interval so startup never stampedes the mail servers.
func (s *Scheduler) Start() {
	log.Printf("[Scheduler] Started with interval %s", s.interval)
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-s.stopChan:
				log.Println("[Scheduler] Stopped")
				return
			}
		}
	}()
}

// Stop terminates the tick loop. Jobs already enqueued still run.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) tick() {
	accounts, err := s.accounts.FindSyncEnabled()
	if err != nil {
		log.Printf("[Scheduler] Failed to list accounts: %v", err)
		return
	}

	now := time.Now()
	for _, account := range accounts {
		inbox, err := s.inboxes.FindByID(account.InboxID)
		if err != nil || inbox == nil {
			log.Printf("[Scheduler] Account %s has no inbox, skipping", account.ID)
			continue
		}
		if !due(account, inbox, now) {
			continue
		}

		job := queue.Job{ProjectID: inbox.ProjectID, Type: queue.TriggerScheduled}
		if err := s.runner.Enqueue(job); err != nil {
			if errors.Is(err, queue.ErrQueueFull) {
				// The account stays due and the next tick retries.
				log.Printf("[Scheduler] Queue full, deferring project %s", inbox.ProjectID)
				continue
			}
			log.Printf("[Scheduler] Failed to enqueue project %s: %v", inbox.ProjectID, err)
		}
	}
}

// due reports whether the account's own sync interval has elapsed. An account
// that has never synced is always due.
func due(account *domain.MailAccount, inbox *domain.Inbox, now time.Time) bool {
	if account.LastSyncAt == nil {
		return true
	}
	interval := time.Duration(inbox.SyncIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return now.Sub(*account.LastSyncAt) >= interval
}
