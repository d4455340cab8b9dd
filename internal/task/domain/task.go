package domain

import (
	"time"

	"gorm.io/gorm"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHighest Priority = "HIGHEST"
	PriorityHigh    Priority = "HIGH"
	PriorityMedium  Priority = "MEDIUM"
	PriorityLow     Priority = "LOW"
	PriorityLowest  Priority = "LOWEST"
)

// Task is a work item inside a project. Email-created tasks carry the
// conversation's thread id; at most one non-deleted task per project shares
// a given EmailThreadID.
type Task struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ProjectID string `json:"project_id" gorm:"index;not null"`
	Number    int    `json:"number"`
	Slug      string `json:"slug" gorm:"index"`

	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type" gorm:"default:task"`
	Priority    Priority `json:"priority" gorm:"default:MEDIUM"`
	Status      string   `json:"status" gorm:"default:TODO"`

	AssigneeID *string `json:"assignee_id,omitempty" gorm:"index"`
	ReporterID string  `json:"reporter_id"`
	SprintID   *string `json:"sprint_id,omitempty"`

	Labels string `json:"labels,omitempty"` // comma-separated

	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	EmailThreadID     string `json:"email_thread_id,omitempty" gorm:"index"`
	AllowEmailReplies bool   `json:"allow_email_replies" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TaskComment is one comment on a task. Comments materialized from email
// carry the originating message-id and a display name for senders that are
// not platform users acting directly.
type TaskComment struct {
	ID     string `json:"id" gorm:"primaryKey"`
	TaskID string `json:"task_id" gorm:"index;not null"`

	AuthorID   *string `json:"author_id,omitempty"`
	AuthorName string  `json:"author_name,omitempty"`
	Content    string  `json:"content"`

	EmailMessageID string `json:"email_message_id,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskAttachment is a file attached to a task. Email attachments are copied
// here, never moved off the message.
type TaskAttachment struct {
	ID     string `json:"id" gorm:"primaryKey"`
	TaskID string `json:"task_id" gorm:"index;not null"`

	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`

	CreatedAt time.Time `json:"created_at"`
}
