package usecase

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/parser"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
	"github.com/taskosaur/mailroom/pkg/storage"
)

// Gate is the idempotency barrier between fetching and everything downstream.
// A message passes through at most once, enforced by the unique index on the
// global message-id rather than by anything in memory.
type Gate struct {
	messages repository.MessageRepository
	store    storage.BlobStore
}

// NewGate creates a Gate.
func NewGate(messages repository.MessageRepository, store storage.BlobStore) *Gate {
	return &Gate{messages: messages, store: store}
}

// Admit persists the normalized message if it has not been seen before.
// Returns the stored record and whether this call created it. A duplicate is
// a normal outcome, not an error: overlapping fetch windows re-deliver
// messages routinely.
func (g *Gate) Admit(runID, inboxID, threadID string, nm *parser.NormalizedMessage) (*domain.InboxMessage, bool, error) {
	if existing, err := g.messages.FindByMessageID(nm.MessageID); err != nil {
		return nil, false, fmt.Errorf("failed duplicate lookup: %w", err)
	} else if existing != nil {
		return existing, false, nil
	}

	msg := toRecord(inboxID, threadID, nm)
	if err := g.messages.Create(msg); err != nil {
		if errors.Is(err, repository.ErrDuplicateMessage) {
			// Lost a race with a concurrent sync; the winner owns the message.
			existing, lookupErr := g.messages.FindByMessageID(nm.MessageID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to persist message: %w", err)
	}

	g.saveAttachments(runID, msg, nm.Attachments)
	return msg, true, nil
}

// saveAttachments stores attachment blobs and their rows. A failed attachment
// is logged and skipped; the message itself is already committed and stays.
func (g *Gate) saveAttachments(runID string, msg *domain.InboxMessage, atts []*parser.Attachment) {
	for _, att := range atts {
		obj, err := g.store.Save(att.Data, "messages/"+msg.ID, att.Filename)
		if err != nil {
			log.Printf("[Gate] run=%s failed to store attachment %q for message %s: %v", runID, att.Filename, msg.MessageID, err)
			continue
		}
		row := &domain.MessageAttachment{
			MessageID:  msg.ID,
			Filename:   att.Filename,
			MimeType:   att.MimeType,
			Size:       obj.Size,
			ContentID:  att.ContentID,
			StorageKey: obj.Key,
			URL:        obj.URL,
		}
		if err := g.messages.CreateAttachment(row); err != nil {
			log.Printf("[Gate] run=%s failed to record attachment %q for message %s: %v", runID, att.Filename, msg.MessageID, err)
		}
	}
}

func toRecord(inboxID, threadID string, nm *parser.NormalizedMessage) *domain.InboxMessage {
	return &domain.InboxMessage{
		InboxID:        inboxID,
		MessageID:      nm.MessageID,
		UID:            nm.UID,
		ThreadID:       threadID,
		InReplyTo:      nm.InReplyTo,
		References:     strings.Join(nm.References, " "),
		Subject:        nm.Subject,
		FromEmail:      nm.From.Email,
		FromName:       nm.From.Name,
		ToEmails:       joinAddresses(nm.To),
		CcEmails:       joinAddresses(nm.Cc),
		BccEmails:      joinAddresses(nm.Bcc),
		Text:           nm.Text,
		TextSignature:  nm.TextSignature,
		HTML:           nm.HTML,
		HTMLSignature:  nm.HTMLSignature,
		Headers:        nm.Headers,
		HasAttachments: len(nm.Attachments) > 0,
		Status:         domain.MessageStatusPending,
		Date:           nm.Date,
	}
}

func joinAddresses(addrs []parser.Address) string {
	emails := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	return strings.Join(emails, ",")
}
