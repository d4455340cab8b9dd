package domain

import "time"

// Inbox is the email-ingestion configuration attached to exactly one project.
type Inbox struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ProjectID string `json:"project_id" gorm:"uniqueIndex;not null"`

	AutoCreateTask    bool    `json:"auto_create_task" gorm:"default:true"`
	DefaultTaskType   string  `json:"default_task_type" gorm:"default:task"`
	DefaultPriority   string  `json:"default_priority" gorm:"default:MEDIUM"`
	DefaultStatus     string  `json:"default_status" gorm:"default:TODO"`
	DefaultAssigneeID *string `json:"default_assignee_id,omitempty"`

	SyncIntervalMinutes int `json:"sync_interval_minutes" gorm:"default:5"`

	AutoReplyEnabled  bool   `json:"auto_reply_enabled" gorm:"default:false"`
	AutoReplyTemplate string `json:"auto_reply_template,omitempty"`
	EmailSignature    string `json:"email_signature,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MailAccount holds one IMAP+SMTP identity, owned 1:1 by an Inbox.
// Passwords are encrypted at rest with AES-256-GCM.
type MailAccount struct {
	ID      string `json:"id" gorm:"primaryKey"`
	InboxID string `json:"inbox_id" gorm:"uniqueIndex;not null"`

	ImapHost string `json:"imap_host" gorm:"not null"`
	ImapPort int    `json:"imap_port" gorm:"default:993"`
	ImapTLS  bool   `json:"imap_tls" gorm:"default:true"`

	SmtpHost string `json:"smtp_host"`
	SmtpPort int    `json:"smtp_port" gorm:"default:587"`
	SmtpTLS  bool   `json:"smtp_tls" gorm:"default:false"`

	Username    string `json:"username" gorm:"not null"`
	PasswordEnc string `json:"-" gorm:"not null"`
	Folder      string `json:"folder" gorm:"default:INBOX"`

	SyncEnabled   bool       `json:"sync_enabled" gorm:"default:true"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
	LastSyncError string     `json:"last_sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
