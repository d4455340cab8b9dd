package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/parser"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
	"github.com/taskosaur/mailroom/internal/inbox/rules"
	"github.com/taskosaur/mailroom/internal/inbox/thread"
	taskusecase "github.com/taskosaur/mailroom/internal/task/usecase"
	"github.com/taskosaur/mailroom/pkg/crypto"
	"github.com/taskosaur/mailroom/pkg/imap"
	"github.com/taskosaur/mailroom/pkg/queue"
)

// MailSession is the slice of the IMAP session the orchestrator uses.
// Satisfied by *imap.Session.
type MailSession interface {
	FetchSince(ctx context.Context, checkpoint time.Time) ([]*imap.RawMessage, error)
	MarkRead(uid uint32) error
	Logout() error
}

// SessionOpener opens one IMAP session for an account.
type SessionOpener func(cfg imap.AccountConfig, timeouts imap.Timeouts) (MailSession, error)

// OpenIMAPSession is the production SessionOpener.
func OpenIMAPSession(cfg imap.AccountConfig, timeouts imap.Timeouts) (MailSession, error) {
	return imap.Open(cfg, timeouts)
}

// Summary is what one sync run produced.
type Summary struct {
	RunID     string `json:"run_id"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Commented int    `json:"commented"`
	Skipped   int    `json:"skipped"`
}

// Orchestrator drives one account's sync cycle end to end: connect, fetch,
// and for each message normalize, thread, gate, apply rules and materialize.
// Messages are handled strictly oldest first so a reply can always find the
// task its parent created moments earlier in the same batch.
type Orchestrator struct {
	inboxes     repository.InboxRepository
	accounts    repository.MailAccountRepository
	messages    repository.MessageRepository
	rules       repository.RuleRepository
	syncLogs    repository.SyncLogRepository
	gate        *Gate
	materialize *taskusecase.Materializer
	mailSender  MailSender
	open        SessionOpener
	key         string
	timeouts    imap.Timeouts
}

// NewOrchestrator wires the sync pipeline.
func NewOrchestrator(
	inboxes repository.InboxRepository,
	accounts repository.MailAccountRepository,
	messages repository.MessageRepository,
	ruleRepo repository.RuleRepository,
	syncLogs repository.SyncLogRepository,
	gate *Gate,
	materializer *taskusecase.Materializer,
	mailSender MailSender,
	open SessionOpener,
	encryptionKey string,
	timeouts imap.Timeouts,
) *Orchestrator {
	return &Orchestrator{
		inboxes:     inboxes,
		accounts:    accounts,
		messages:    messages,
		rules:       ruleRepo,
		syncLogs:    syncLogs,
		gate:        gate,
		materialize: materializer,
		mailSender:  mailSender,
		open:        open,
		key:         encryptionKey,
		timeouts:    timeouts,
	}
}

// Handle adapts the orchestrator to the job runner. Scheduled and manual
// jobs run the exact same pipeline.
func (o *Orchestrator) Handle(ctx context.Context, job queue.Job, progress func(queue.Checkpoint)) (interface{}, error) {
	return o.SyncProject(ctx, job.ProjectID, job.Type, progress)
}

// SyncProject runs one full sync for the project's inbox. Per-message
// failures are logged and counted as skipped; only connection-level failures
// abort the run.
func (o *Orchestrator) SyncProject(ctx context.Context, projectID string, trigger queue.TriggerType, progress func(queue.Checkpoint)) (*Summary, error) {
	if progress == nil {
		progress = func(queue.Checkpoint) {}
	}
	runID := uuid.NewString()
	summary := &Summary{RunID: runID}

	inbox, err := o.inboxes.FindByProjectID(projectID)
	if err != nil {
		return summary, fmt.Errorf("failed to load inbox: %w", err)
	}
	if inbox == nil {
		return summary, fmt.Errorf("project %s has no inbox", projectID)
	}

	account, err := o.accounts.FindByInboxID(inbox.ID)
	if err != nil {
		return summary, fmt.Errorf("failed to load mail account: %w", err)
	}
	if account == nil {
		return summary, fmt.Errorf("inbox %s has no mail account", inbox.ID)
	}
	if !account.SyncEnabled {
		return summary, fmt.Errorf("sync disabled for account %s", account.ID)
	}

	password, err := crypto.Decrypt(account.PasswordEnc, o.key)
	if err != nil {
		return summary, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	syncLog := &domain.SyncLog{
		AccountID: account.ID,
		RunID:     runID,
		Trigger:   string(trigger),
		Status:    domain.SyncStatusRunning,
		StartedAt: time.Now(),
	}
	if err := o.syncLogs.Create(syncLog); err != nil {
		log.Printf("[SyncOrchestrator] run=%s failed to open sync log: %v", runID, err)
	}

	start := time.Now()
	fetched, err := o.runSession(ctx, runID, inbox, account, password, progress, summary)
	if err != nil {
		o.finish(runID, syncLog.ID, account, start, summary, err)
		return summary, err
	}

	log.Printf("[SyncOrchestrator] run=%s project=%s trigger=%s fetched=%d created=%d commented=%d skipped=%d",
		runID, projectID, trigger, fetched, summary.Created, summary.Commented, summary.Skipped)

	o.finish(runID, syncLog.ID, account, start, summary, nil)
	progress(queue.CheckpointSynced)
	return summary, nil
}

// runSession holds the IMAP connection open for exactly one fetch-and-process
// cycle. Returns the fetched message count.
func (o *Orchestrator) runSession(ctx context.Context, runID string, inbox *domain.Inbox, account *domain.MailAccount, password string, progress func(queue.Checkpoint), summary *Summary) (int, error) {
	cfg := imap.AccountConfig{
		Host:     account.ImapHost,
		Port:     account.ImapPort,
		Username: account.Username,
		Password: password,
		UseTLS:   account.ImapTLS,
		Folder:   account.Folder,
	}

	session, err := o.open(cfg, o.timeouts)
	if err != nil {
		return 0, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := session.Logout(); err != nil {
			log.Printf("[SyncOrchestrator] run=%s logout failed: %v", runID, err)
		}
	}()
	progress(queue.CheckpointConnected)

	var checkpoint time.Time
	if account.LastSyncAt != nil {
		checkpoint = *account.LastSyncAt
	}
	rawMessages, err := session.FetchSince(ctx, checkpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch: %w", err)
	}
	progress(queue.CheckpointFetched)

	var replySender rules.ReplySender
	if o.mailSender != nil && account.SmtpHost != "" {
		replySender = newAutoReplySender(o.mailSender, account, password)
	}
	engine := rules.NewEngine(o.rules, replySender)

	for _, raw := range rawMessages {
		if err := o.processMessage(runID, session, engine, inbox, account, raw, summary); err != nil {
			log.Printf("[SyncOrchestrator] run=%s uid=%d subject=%q skipped: %v", runID, raw.UID, raw.Subject, err)
			summary.Skipped++
		}
	}
	return len(rawMessages), nil
}

func (o *Orchestrator) processMessage(runID string, session MailSession, engine *rules.Engine, inbox *domain.Inbox, account *domain.MailAccount, raw *imap.RawMessage, summary *Summary) error {
	nm, err := parser.Normalize(raw.Source, raw.UID)
	if err != nil {
		return fmt.Errorf("normalize failed: %w", err)
	}
	if nm.MessageID == "" {
		// Without a message-id the unique index cannot deduplicate, so
		// synthesize a stable one from the account and IMAP uid.
		nm.MessageID = fmt.Sprintf("missing-%s-%d@mailroom.local", account.ID, raw.UID)
	}

	threadID := thread.ResolveThreadID(nm)

	msg, fresh, err := o.gate.Admit(runID, inbox.ID, threadID, nm)
	if err != nil {
		return err
	}
	if !fresh {
		summary.Skipped++
		return nil
	}
	summary.Processed++

	outcome, err := engine.Apply(runID, inbox, msg)
	if err != nil {
		return err
	}

	if outcome.MarkedSpam {
		if err := o.messages.MarkIgnored(msg.ID); err != nil {
			return err
		}
		o.markRead(runID, session, msg.UID)
		return nil
	}

	if !inbox.AutoCreateTask {
		// Message stays PENDING for manual triage.
		return nil
	}

	result, err := o.materialize.Materialize(runID, inbox, msg, outcome)
	if err != nil {
		return err
	}
	if result.CreatedTask {
		summary.Created++
	}
	if result.AddedComment {
		summary.Commented++
	}
	o.markRead(runID, session, msg.UID)
	return nil
}

func (o *Orchestrator) markRead(runID string, session MailSession, uid uint32) {
	if err := session.MarkRead(uid); err != nil {
		log.Printf("[SyncOrchestrator] run=%s failed to mark uid=%d read: %v", runID, uid, err)
	}
}

// finish closes the sync log and stamps the account with the run's outcome.
// The sync start time becomes the next run's fetch checkpoint.
func (o *Orchestrator) finish(runID, logID string, account *domain.MailAccount, start time.Time, summary *Summary, runErr error) {
	status := domain.SyncStatusSuccess
	errText := ""
	checkpoint := &start
	if runErr != nil {
		status = domain.SyncStatusFailed
		errText = runErr.Error()
		// A failed run keeps the old checkpoint so the next run re-covers
		// the same window.
		checkpoint = nil
	}

	if logID != "" {
		if err := o.syncLogs.Finish(logID, status, summary.Processed, summary.Created, summary.Commented, summary.Skipped, errText); err != nil {
			log.Printf("[SyncOrchestrator] run=%s failed to close sync log: %v", runID, err)
		}
	}
	if err := o.accounts.RecordSyncResult(account.ID, checkpoint, errText); err != nil {
		log.Printf("[SyncOrchestrator] run=%s failed to record sync result: %v", runID, err)
	}
}
