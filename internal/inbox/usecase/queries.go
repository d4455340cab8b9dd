package usecase

import (
	"fmt"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
)

// Queries serves the read endpoints over ingested messages and sync history.
type Queries struct {
	inboxes  repository.InboxRepository
	accounts repository.MailAccountRepository
	messages repository.MessageRepository
	syncLogs repository.SyncLogRepository
}

// NewQueries creates the inbox read layer.
func NewQueries(inboxes repository.InboxRepository, accounts repository.MailAccountRepository, messages repository.MessageRepository, syncLogs repository.SyncLogRepository) *Queries {
	return &Queries{inboxes: inboxes, accounts: accounts, messages: messages, syncLogs: syncLogs}
}

// ListMessages returns the project's ingested messages newest first, plus the
// total count for pagination.
func (q *Queries) ListMessages(projectID string, limit, offset int) ([]*domain.InboxMessage, int64, error) {
	inbox, err := q.inboxes.FindByProjectID(projectID)
	if err != nil {
		return nil, 0, err
	}
	if inbox == nil {
		return nil, 0, fmt.Errorf("project %s has no inbox", projectID)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return q.messages.ListByInbox(inbox.ID, limit, offset)
}

// ListSyncLogs returns the project's most recent sync runs, newest first.
func (q *Queries) ListSyncLogs(projectID string, limit int) ([]*domain.SyncLog, error) {
	inbox, err := q.inboxes.FindByProjectID(projectID)
	if err != nil {
		return nil, err
	}
	if inbox == nil {
		return nil, fmt.Errorf("project %s has no inbox", projectID)
	}
	account, err := q.accounts.FindByInboxID(inbox.ID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("inbox %s has no mail account", inbox.ID)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return q.syncLogs.ListByAccount(account.ID, limit)
}
