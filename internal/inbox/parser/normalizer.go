package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// Attachment is one decoded MIME attachment.
type Attachment struct {
	Filename  string
	MimeType  string
	Size      int64
	ContentID string // normalized: no angle brackets, lowercase
	Inline    bool
	Data      []byte
}

// NormalizedMessage is the canonical in-memory record of one email after
// MIME decoding, address extraction, quote stripping and signature
// splitting. Producing it involves no I/O and is deterministic.
type NormalizedMessage struct {
	MessageID  string
	InReplyTo  string
	References []string

	Subject string
	From    Address
	To      []Address
	Cc      []Address
	Bcc     []Address

	Text          string
	TextSignature string
	HTML          string
	HTMLSignature string

	Date        time.Time
	Headers     string
	Attachments []*Attachment

	UID uint32
}

// Normalize parses one raw RFC 5322 message into its canonical form.
func Normalize(source []byte, uid uint32) (*NormalizedMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	h := mr.Header
	msg := &NormalizedMessage{UID: uid}

	msg.MessageID, _ = h.MessageID()
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		msg.InReplyTo = ids[0]
	}
	if refs, err := h.MsgIDList("References"); err == nil {
		msg.References = NormalizeReferences(refs)
	}

	msg.Subject, _ = h.Subject()
	msg.Date, _ = h.Date()
	msg.Headers = headerBlob(&h)

	msg.From = firstAddress(&h, "From")
	msg.To = addressList(&h, "To")
	msg.Cc = addressList(&h, "Cc")
	msg.Bcc = addressList(&h, "Bcc")

	var text, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One undecodable part doesn't void the rest of the message.
			continue
		}

		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := ph.ContentType()
			switch {
			case strings.HasPrefix(ct, "text/plain") && text == "":
				body, err := io.ReadAll(part.Body)
				if err == nil {
					text = string(body)
				}
			case strings.HasPrefix(ct, "text/html") && html == "":
				body, err := io.ReadAll(part.Body)
				if err == nil {
					html = string(body)
				}
			default:
				// Inline non-text content, typically an embedded image.
				if att := readAttachment(ct, "", part.Body, ph.Get("Content-Id"), true); att != nil {
					msg.Attachments = append(msg.Attachments, att)
				}
			}
		case *mail.AttachmentHeader:
			filename, _ := ph.Filename()
			ct, _, _ := ph.ContentType()
			if att := readAttachment(ct, filename, part.Body, ph.Get("Content-Id"), false); att != nil {
				msg.Attachments = append(msg.Attachments, att)
			}
		}
	}

	cleaned := StripQuotedText(text)
	msg.Text, msg.TextSignature = SplitSignature(cleaned)

	cleanedHTML := StripQuotedHTML(html)
	msg.HTML, msg.HTMLSignature = SplitHTMLSignature(cleanedHTML)

	return msg, nil
}

// NormalizeReferences filters empty entries out of a references chain while
// preserving order (oldest first, per RFC 5322).
func NormalizeReferences(refs []string) []string {
	var out []string
	for _, ref := range refs {
		ref = strings.TrimSpace(strings.Trim(strings.TrimSpace(ref), "<>"))
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

// ParseReferenceHeader extracts message-ids from a raw whitespace-separated
// References header value.
func ParseReferenceHeader(raw string) []string {
	if raw == "" {
		return nil
	}
	matches := angleBracketRe.FindAllStringSubmatch(raw, -1)
	if len(matches) > 0 {
		refs := make([]string, 0, len(matches))
		for _, m := range matches {
			refs = append(refs, m[1])
		}
		return NormalizeReferences(refs)
	}
	return NormalizeReferences(strings.Fields(raw))
}

func firstAddress(h *mail.Header, key string) Address {
	list := addressList(h, key)
	if len(list) == 0 {
		return Address{}
	}
	return list[0]
}

func addressList(h *mail.Header, key string) []Address {
	parsed, err := h.AddressList(key)
	if err != nil || len(parsed) == 0 {
		// Fall back to the raw header for malformed address lists.
		raw := h.Get(key)
		if raw == "" {
			return nil
		}
		var out []Address
		for _, piece := range strings.Split(raw, ",") {
			if addr := ExtractAddress(piece); addr.Email != "" {
				out = append(out, addr)
			}
		}
		return out
	}

	out := make([]Address, 0, len(parsed))
	for _, a := range parsed {
		out = append(out, Address{Name: a.Name, Email: strings.ToLower(a.Address)})
	}
	return out
}

func headerBlob(h *mail.Header) string {
	var sb strings.Builder
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			continue
		}
		sb.WriteString(fields.Key())
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	return sb.String()
}

func readAttachment(mimeType, filename string, body io.Reader, contentID string, inline bool) *Attachment {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return nil
	}
	if filename == "" {
		filename = "attachment"
	}
	return &Attachment{
		Filename:  filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		ContentID: normalizeContentID(contentID),
		Inline:    inline,
		Data:      data,
	}
}

func normalizeContentID(cid string) string {
	cid = strings.TrimSpace(cid)
	cid = strings.TrimPrefix(cid, "<")
	cid = strings.TrimSuffix(cid, ">")
	return strings.ToLower(cid)
}
