package repository

import (
	"errors"
	"time"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
)

// ErrDuplicateMessage indicates a message with the same message-id already
// exists. Callers treat this as "already ingested", not as a failure.
var ErrDuplicateMessage = errors.New("message already ingested")

// InboxRepository defines persistence operations for inbox configuration.
type InboxRepository interface {
	FindByID(id string) (*domain.Inbox, error)
	FindByProjectID(projectID string) (*domain.Inbox, error)
}

// MailAccountRepository defines persistence operations for mail accounts.
type MailAccountRepository interface {
	FindByID(id string) (*domain.MailAccount, error)
	FindByInboxID(inboxID string) (*domain.MailAccount, error)
	FindSyncEnabled() ([]*domain.MailAccount, error)
	// RecordSyncResult stamps the account with the run's outcome. A nil
	// timestamp records the error without advancing the fetch checkpoint.
	RecordSyncResult(id string, at *time.Time, syncErr string) error
}

// MessageRepository defines persistence operations for ingested messages.
// Create must surface unique-constraint violations on message-id as
// ErrDuplicateMessage; the constraint lives in the database so the guarantee
// holds across concurrent syncs.
type MessageRepository interface {
	Create(msg *domain.InboxMessage) error
	FindByMessageID(messageID string) (*domain.InboxMessage, error)
	FindConvertedByMessageID(messageID string) (*domain.InboxMessage, error)
	FindRecentByThread(inboxID string, limit int) ([]*domain.InboxMessage, error)
	ListByInbox(inboxID string, limit, offset int) ([]*domain.InboxMessage, int64, error)
	MarkConverted(id, taskID string) error
	MarkIgnored(id string) error
	CreateAttachment(att *domain.MessageAttachment) error
	AttachmentsByMessage(messageID string) ([]*domain.MessageAttachment, error)
}

// RuleRepository defines persistence operations for inbox rules.
type RuleRepository interface {
	FindEnabledByInbox(inboxID string) ([]*domain.Rule, error)
}

// SyncLogRepository defines persistence operations for sync run logs.
type SyncLogRepository interface {
	Create(log *domain.SyncLog) error
	Finish(id string, status domain.SyncStatus, processed, created, commented, skipped int, errText string) error
	ListByAccount(accountID string, limit int) ([]*domain.SyncLog, error)
}
