package domain

import (
	"strings"
	"time"
)

// MessageStatus is the lifecycle state of an ingested message. A message
// moves PENDING -> CONVERTED or PENDING -> IGNORED exactly once.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "PENDING"
	MessageStatusConverted MessageStatus = "CONVERTED"
	MessageStatusIgnored   MessageStatus = "IGNORED"
)

// InboxMessage is the canonical persisted record of one email. The global
// message-id is the idempotency key: the unique index makes double ingestion
// impossible even across concurrent syncs.
type InboxMessage struct {
	ID      string `json:"id" gorm:"primaryKey"`
	InboxID string `json:"inbox_id" gorm:"index;not null"`

	MessageID  string `json:"message_id" gorm:"uniqueIndex;not null"`
	UID        uint32 `json:"uid"`
	ThreadID   string `json:"thread_id" gorm:"index"`
	InReplyTo  string `json:"in_reply_to,omitempty"`
	References string `json:"references,omitempty"` // normalized, space-separated, oldest first

	Subject   string `json:"subject"`
	FromEmail string `json:"from_email" gorm:"index"`
	FromName  string `json:"from_name,omitempty"`
	ToEmails  string `json:"to_emails,omitempty"` // comma-separated bare addresses
	CcEmails  string `json:"cc_emails,omitempty"`
	BccEmails string `json:"bcc_emails,omitempty"`

	Text          string `json:"text,omitempty"`
	TextSignature string `json:"text_signature,omitempty"`
	HTML          string `json:"html,omitempty"`
	HTMLSignature string `json:"html_signature,omitempty"`
	Headers       string `json:"headers,omitempty"`

	HasAttachments bool `json:"has_attachments" gorm:"default:false"`

	Status      MessageStatus `json:"status" gorm:"default:PENDING;index"`
	ConvertedAt *time.Time    `json:"converted_at,omitempty"`
	TaskID      *string       `json:"task_id,omitempty" gorm:"index"`

	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReferenceList splits the stored references back into individual ids.
func (m *InboxMessage) ReferenceList() []string {
	return splitList(m.References, " ")
}

// ToList returns the recipient addresses as a slice.
func (m *InboxMessage) ToList() []string {
	return splitList(m.ToEmails, ",")
}

// CcList returns the cc addresses as a slice.
func (m *InboxMessage) CcList() []string {
	return splitList(m.CcEmails, ",")
}

func splitList(joined, sep string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MessageAttachment is one decoded attachment owned by exactly one message.
// Converting a message copies (never moves) attachments onto the task.
type MessageAttachment struct {
	ID        string `json:"id" gorm:"primaryKey"`
	MessageID string `json:"message_id" gorm:"index;not null"`

	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	ContentID  string `json:"content_id,omitempty"` // set for inline images
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`

	CreatedAt time.Time `json:"created_at"`
}
