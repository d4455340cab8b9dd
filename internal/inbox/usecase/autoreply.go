package usecase

import (
	"fmt"
	"strings"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/pkg/smtp"
)

const defaultAutoReplyBody = "Thank you for your message. We have received it and will get back to you shortly."

// MailSender sends one threaded reply. Satisfied by *smtp.Sender.
type MailSender interface {
	SendReply(cfg smtp.AccountConfig, reply smtp.Reply) error
}

// autoReplySender adapts one account's SMTP identity to the rule engine's
// ReplySender. It lives for a single sync run: the replied set deduplicates
// auto-replies per sender within the run so a burst from one address gets
// one acknowledgement, not one per message.
type autoReplySender struct {
	sender   MailSender
	account  *domain.MailAccount
	password string
	replied  map[string]bool
}

func newAutoReplySender(sender MailSender, account *domain.MailAccount, password string) *autoReplySender {
	return &autoReplySender{
		sender:   sender,
		account:  account,
		password: password,
		replied:  make(map[string]bool),
	}
}

func (a *autoReplySender) SendAutoReply(inbox *domain.Inbox, msg *domain.InboxMessage) error {
	to := strings.ToLower(msg.FromEmail)
	if to == "" {
		return fmt.Errorf("message %s has no sender address", msg.MessageID)
	}
	// Never answer our own address; an auto-reply loop fills both inboxes.
	if to == strings.ToLower(a.account.Username) {
		return nil
	}
	if a.replied[to] {
		return nil
	}

	body := inbox.AutoReplyTemplate
	if strings.TrimSpace(body) == "" {
		body = defaultAutoReplyBody
	}
	if sig := strings.TrimSpace(inbox.EmailSignature); sig != "" {
		body = body + "\n\n" + sig
	}

	reply := smtp.Reply{
		To:         msg.FromEmail,
		Subject:    msg.Subject,
		Body:       body,
		InReplyTo:  msg.MessageID,
		References: append(msg.ReferenceList(), msg.MessageID),
	}
	cfg := smtp.AccountConfig{
		Host:     a.account.SmtpHost,
		Port:     a.account.SmtpPort,
		Username: a.account.Username,
		Password: a.password,
		UseTLS:   a.account.SmtpTLS,
		From:     a.account.Username,
	}
	if err := a.sender.SendReply(cfg, reply); err != nil {
		return err
	}
	a.replied[to] = true
	return nil
}
