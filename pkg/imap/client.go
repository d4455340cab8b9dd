package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// AccountConfig carries everything needed to open one IMAP session.
// Credentials arrive already decrypted.
type AccountConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	Folder   string
}

// RawMessage is one fetched message: the full RFC 5322 source plus the
// envelope fields needed before MIME parsing happens.
type RawMessage struct {
	UID     uint32
	Subject string
	Date    time.Time
	Source  []byte
}

// Timeouts bounds every network operation of a session.
type Timeouts struct {
	Dial   time.Duration
	Fetch  time.Duration
	Logout time.Duration
}

// DefaultTimeouts mirrors the production defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{Dial: 30 * time.Second, Fetch: 2 * time.Minute, Logout: 5 * time.Second}
}

// Session is a single-account, single-folder IMAP session. A session is used
// for exactly one fetch cycle and then torn down; there is no pooling.
type Session struct {
	cli      *client.Client
	folder   string
	timeouts Timeouts
}

// Open dials, authenticates and selects the monitored folder read-write,
// which holds the folder lock for the duration of the session. Any failure
// here is fatal to the caller's sync.
func Open(cfg AccountConfig, timeouts Timeouts) (*Session, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var cli *client.Client
	var err error
	if cfg.UseTLS {
		dialer := &net.Dialer{Timeout: timeouts.Dial}
		conn, dialErr := tls.DialWithDialer(dialer, "tcp", addr, nil)
		if dialErr != nil {
			return nil, classifyDialError("dial", dialErr)
		}
		cli, err = client.New(conn)
		if err != nil {
			conn.Close()
			return nil, newError(KindConnection, "greeting", err)
		}
	} else {
		cli, err = client.Dial(addr)
		if err != nil {
			return nil, classifyDialError("dial", err)
		}
	}

	cli.Timeout = timeouts.Fetch

	if err := cli.Login(cfg.Username, cfg.Password); err != nil {
		cli.Logout()
		return nil, newError(KindAuth, "login", err)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "INBOX"
	}
	if _, err := cli.Select(folder, false); err != nil {
		cli.Logout()
		return nil, newError(KindProtocol, "select", err)
	}

	return &Session{cli: cli, folder: folder, timeouts: timeouts}, nil
}

func classifyDialError(op string, err error) *ClientError {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return newError(KindTimeout, op, err)
	}
	return newError(KindConnection, op, err)
}

// FetchSince returns all messages received since the checkpoint, oldest
// first. A zero checkpoint fetches the entire folder. Any failure aborts the
// whole fetch: a broken connection cannot be trusted to have enumerated the
// true message set.
func (s *Session) FetchSince(ctx context.Context, checkpoint time.Time) ([]*RawMessage, error) {
	criteria := goimap.NewSearchCriteria()
	if !checkpoint.IsZero() {
		criteria.Since = checkpoint
	}

	uids, err := s.cli.UidSearch(criteria)
	if err != nil {
		return nil, newError(KindProtocol, "search", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uids...)

	section := &goimap.BodySectionName{Peek: true}
	items := []goimap.FetchItem{goimap.FetchEnvelope, goimap.FetchUid, section.FetchItem()}

	messages := make(chan *goimap.Message, 32)
	done := make(chan error, 1)
	go func() {
		done <- s.cli.UidFetch(seqSet, items, messages)
	}()

	var fetched []*RawMessage
	for msg := range messages {
		raw, err := toRawMessage(msg, section)
		if err != nil {
			// Source missing for one message is a protocol-level problem for
			// that message only; the normalizer cannot do anything with it.
			continue
		}
		fetched = append(fetched, raw)
	}

	select {
	case err := <-done:
		if err != nil {
			return nil, newError(KindProtocol, "fetch", err)
		}
	case <-ctx.Done():
		return nil, newError(KindTimeout, "fetch", ctx.Err())
	}

	// Oldest first so replies never precede the message they answer.
	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].Date.Before(fetched[j].Date)
	})
	return fetched, nil
}

func toRawMessage(msg *goimap.Message, section *goimap.BodySectionName) (*RawMessage, error) {
	body := msg.GetBody(section)
	if body == nil {
		return nil, fmt.Errorf("message %d has no body section", msg.Uid)
	}
	source, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read message source: %w", err)
	}

	raw := &RawMessage{UID: msg.Uid, Source: source}
	if msg.Envelope != nil {
		raw.Subject = msg.Envelope.Subject
		raw.Date = msg.Envelope.Date
	}
	return raw, nil
}

// MarkRead adds the \Seen flag. Best-effort: by the time this is called the
// message is already durably converted, so failures never escalate.
func (s *Session) MarkRead(uid uint32) error {
	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uid)

	item := goimap.FormatFlagsOp(goimap.AddFlags, true)
	flags := []interface{}{goimap.SeenFlag}
	if err := s.cli.UidStore(seqSet, item, flags, nil); err != nil {
		return newError(KindProtocol, "store", err)
	}
	return nil
}

// Logout tears the session down, bounded by its own short timeout. A failed
// logout is reported but callers treat it as non-fatal cleanup.
func (s *Session) Logout() error {
	s.cli.Timeout = s.timeouts.Logout
	if err := s.cli.Logout(); err != nil {
		return newError(KindConnection, "logout", err)
	}
	return nil
}
