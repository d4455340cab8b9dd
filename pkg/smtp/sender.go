package smtp

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// ErrConnectionFailed indicates the SMTP server could not be reached.
var ErrConnectionFailed = errors.New("smtp connection failed")

const dialTimeout = 30 * time.Second

// AccountConfig carries one sender identity. Credentials arrive decrypted.
type AccountConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool // implicit TLS (465); otherwise STARTTLS is attempted
	From     string
	FromName string
}

// Reply is an outbound templated reply threaded onto an existing conversation.
type Reply struct {
	To         string
	Subject    string
	Body       string
	InReplyTo  string   // message-id of the inbound message being answered
	References []string // thread chain, oldest first
}

// Sender sends auto-replies over SMTP using the inbox's own account identity.
type Sender struct{}

// NewSender returns a Sender.
func NewSender() *Sender {
	return &Sender{}
}

// SendReply builds and sends one reply. The In-Reply-To header ties the reply
// back to the originating message so mail clients keep the thread intact.
func (s *Sender) SendReply(cfg AccountConfig, reply Reply) error {
	content := buildReplyContent(cfg, reply, time.Now())
	return send(cfg, []string{reply.To}, content)
}

func buildReplyContent(cfg AccountConfig, reply Reply, now time.Time) []byte {
	var buf bytes.Buffer

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}

	subject := reply.Subject
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		subject = "Re: " + subject
	}

	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", reply.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", now.Format(time.RFC1123Z)))
	if reply.InReplyTo != "" {
		buf.WriteString(fmt.Sprintf("In-Reply-To: <%s>\r\n", reply.InReplyTo))
	}
	if len(reply.References) > 0 {
		refs := make([]string, 0, len(reply.References))
		for _, ref := range reply.References {
			if ref != "" {
				refs = append(refs, "<"+ref+">")
			}
		}
		buf.WriteString(fmt.Sprintf("References: %s\r\n", strings.Join(refs, " ")))
	}
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(reply.Body)
	buf.WriteString("\r\n")

	return buf.Bytes()
}

func send(cfg AccountConfig, recipients []string, content []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var cli *smtp.Client
	if cfg.UseTLS {
		tlsConfig := &tls.Config{ServerName: cfg.Host}
		conn, err := tls.DialWithDialer(&net.Dialer{Timeout: dialTimeout}, "tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
		cli, err = smtp.NewClient(conn, cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
	} else {
		var err error
		cli, err = smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		}
		if ok, _ := cli.Extension("STARTTLS"); ok {
			if err := cli.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
				cli.Close()
				return fmt.Errorf("starttls failed: %v", err)
			}
		}
	}
	defer cli.Close()

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	if err := cli.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %v", err)
	}

	if err := cli.Mail(cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %v", err)
	}
	for _, rcpt := range recipients {
		if err := cli.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO failed for %s: %v", rcpt, err)
		}
	}

	w, err := cli.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %v", err)
	}

	// Some servers return odd responses on QUIT; the message is already accepted.
	cli.Quit()
	return nil
}
