package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
)

type gormInboxRepository struct {
	db *gorm.DB
}

// NewInboxRepository creates a GORM-based InboxRepository.
func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &gormInboxRepository{db: db}
}

func (r *gormInboxRepository) FindByID(id string) (*domain.Inbox, error) {
	var inbox domain.Inbox
	err := r.db.Where("id = ?", id).First(&inbox).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inbox, nil
}

func (r *gormInboxRepository) FindByProjectID(projectID string) (*domain.Inbox, error) {
	var inbox domain.Inbox
	err := r.db.Where("project_id = ?", projectID).First(&inbox).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inbox, nil
}

type gormMailAccountRepository struct {
	db *gorm.DB
}

// NewMailAccountRepository creates a GORM-based MailAccountRepository.
func NewMailAccountRepository(db *gorm.DB) MailAccountRepository {
	return &gormMailAccountRepository{db: db}
}

func (r *gormMailAccountRepository) FindByID(id string) (*domain.MailAccount, error) {
	var account domain.MailAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormMailAccountRepository) FindByInboxID(inboxID string) (*domain.MailAccount, error) {
	var account domain.MailAccount
	err := r.db.Where("inbox_id = ?", inboxID).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormMailAccountRepository) FindSyncEnabled() ([]*domain.MailAccount, error) {
	var accounts []*domain.MailAccount
	err := r.db.Where("sync_enabled = ?", true).Find(&accounts).Error
	return accounts, err
}

func (r *gormMailAccountRepository) RecordSyncResult(id string, at *time.Time, syncErr string) error {
	updates := map[string]interface{}{
		"last_sync_error": syncErr,
		"updated_at":      time.Now(),
	}
	if at != nil {
		updates["last_sync_at"] = *at
	}
	return r.db.Model(&domain.MailAccount{}).Where("id = ?", id).
		Updates(updates).Error
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a GORM-based MessageRepository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(msg *domain.InboxMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()

	err := r.db.Create(msg).Error
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicateMessage
	}
	return err
}

// isDuplicateKey matches unique-constraint violations across postgres and
// the sqlite driver used in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	text := err.Error()
	return strings.Contains(text, "duplicate key") || strings.Contains(text, "UNIQUE constraint")
}

func (r *gormMessageRepository) FindByMessageID(messageID string) (*domain.InboxMessage, error) {
	var msg domain.InboxMessage
	err := r.db.Where("message_id = ?", messageID).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *gormMessageRepository) FindConvertedByMessageID(messageID string) (*domain.InboxMessage, error) {
	var msg domain.InboxMessage
	err := r.db.Where("message_id = ? AND status = ?", messageID, domain.MessageStatusConverted).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *gormMessageRepository) FindRecentByThread(inboxID string, limit int) ([]*domain.InboxMessage, error) {
	var msgs []*domain.InboxMessage
	err := r.db.Where("inbox_id = ? AND thread_id <> ''", inboxID).
		Order("date DESC").Limit(limit).Find(&msgs).Error
	return msgs, err
}

func (r *gormMessageRepository) ListByInbox(inboxID string, limit, offset int) ([]*domain.InboxMessage, int64, error) {
	var msgs []*domain.InboxMessage
	var total int64

	query := r.db.Model(&domain.InboxMessage{}).Where("inbox_id = ?", inboxID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("date DESC").Limit(limit).Offset(offset).Find(&msgs).Error
	return msgs, total, err
}

func (r *gormMessageRepository) MarkConverted(id, taskID string) error {
	now := time.Now()
	return r.db.Model(&domain.InboxMessage{}).
		Where("id = ? AND status = ?", id, domain.MessageStatusPending).
		Updates(map[string]interface{}{
			"status":       domain.MessageStatusConverted,
			"task_id":      taskID,
			"converted_at": now,
			"updated_at":   now,
		}).Error
}

func (r *gormMessageRepository) MarkIgnored(id string) error {
	return r.db.Model(&domain.InboxMessage{}).
		Where("id = ? AND status = ?", id, domain.MessageStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.MessageStatusIgnored,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormMessageRepository) CreateAttachment(att *domain.MessageAttachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	att.CreatedAt = time.Now()
	return r.db.Create(att).Error
}

func (r *gormMessageRepository) AttachmentsByMessage(messageID string) ([]*domain.MessageAttachment, error) {
	var atts []*domain.MessageAttachment
	err := r.db.Where("message_id = ?", messageID).Find(&atts).Error
	return atts, err
}

type gormRuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a GORM-based RuleRepository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &gormRuleRepository{db: db}
}

func (r *gormRuleRepository) FindEnabledByInbox(inboxID string) ([]*domain.Rule, error) {
	var rules []*domain.Rule
	err := r.db.Where("inbox_id = ? AND enabled = ?", inboxID, true).
		Order("priority DESC, created_at ASC").Find(&rules).Error
	return rules, err
}

type gormSyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository creates a GORM-based SyncLogRepository.
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &gormSyncLogRepository{db: db}
}

func (r *gormSyncLogRepository) Create(log *domain.SyncLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now()
	}
	return r.db.Create(log).Error
}

func (r *gormSyncLogRepository) Finish(id string, status domain.SyncStatus, processed, created, commented, skipped int, errText string) error {
	now := time.Now()
	return r.db.Model(&domain.SyncLog{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"processed":   processed,
			"created":     created,
			"commented":   commented,
			"skipped":     skipped,
			"error":       errText,
			"finished_at": now,
		}).Error
}

func (r *gormSyncLogRepository) ListByAccount(accountID string, limit int) ([]*domain.SyncLog, error) {
	var logs []*domain.SyncLog
	err := r.db.Where("account_id = ?", accountID).
		Order("started_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
