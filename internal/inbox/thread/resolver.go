// Package thread computes stable conversation identifiers for inbound mail.
//
// The thread id groups every message of one email conversation onto one
// task's comment stream. It must come out identical for every message of the
// conversation regardless of arrival order, which is why the References
// chain's first entry (the conversation root) always wins over the immediate
// parent.
package thread

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/taskosaur/mailroom/internal/inbox/parser"
)

// ResolveThreadID returns the conversation id for a normalized message.
// Priority: references[0] (the root) > inReplyTo > own messageId > a
// generated fallback for mail with no usable identifier at all.
func ResolveThreadID(msg *parser.NormalizedMessage) string {
	refs := parser.NormalizeReferences(msg.References)
	if len(refs) > 0 {
		return refs[0]
	}
	if msg.InReplyTo != "" {
		return msg.InReplyTo
	}
	if msg.MessageID != "" {
		return msg.MessageID
	}
	return generateFallbackID(time.Now())
}

const fallbackAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func generateFallbackID(now time.Time) string {
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = fallbackAlphabet[rand.Intn(len(fallbackAlphabet))]
	}
	return fmt.Sprintf("generated-%d-%s", now.UnixNano(), suffix)
}
