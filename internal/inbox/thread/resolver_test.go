package thread

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/taskosaur/mailroom/internal/inbox/parser"
)

func TestResolveThreadID(t *testing.T) {
	tests := []struct {
		name string
		msg  parser.NormalizedMessage
		want string
	}{
		{
			name: "references root wins over everything",
			msg: parser.NormalizedMessage{
				MessageID:  "m3@example.com",
				InReplyTo:  "m2@example.com",
				References: []string{"m1@example.com", "m2@example.com"},
			},
			want: "m1@example.com",
		},
		{
			name: "in-reply-to when references empty",
			msg: parser.NormalizedMessage{
				MessageID: "m2@example.com",
				InReplyTo: "m1@example.com",
			},
			want: "m1@example.com",
		},
		{
			name: "own message id for a root message",
			msg: parser.NormalizedMessage{
				MessageID: "m1@example.com",
			},
			want: "m1@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveThreadID(&tt.msg); got != tt.want {
				t.Errorf("ResolveThreadID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveThreadIDFallback(t *testing.T) {
	msg := &parser.NormalizedMessage{}
	first := ResolveThreadID(msg)
	second := ResolveThreadID(msg)

	if !strings.HasPrefix(first, "generated-") {
		t.Errorf("fallback id %q missing generated prefix", first)
	}
	if first == second {
		t.Errorf("fallback ids must be unique, got %q twice", first)
	}
}

func genMessageID() gopter.Gen {
	return gen.RegexMatch(`[a-z0-9]{4,12}@example\.com`)
}

func TestProperty_ReferencesRootAlwaysWins(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("thread id is references[0] whenever references is non-empty", prop.ForAll(
		func(refs []string, inReplyTo, messageID string) bool {
			if len(refs) == 0 {
				return true
			}
			msg := &parser.NormalizedMessage{
				MessageID:  messageID,
				InReplyTo:  inReplyTo,
				References: refs,
			}
			return ResolveThreadID(msg) == refs[0]
		},
		gen.SliceOf(genMessageID()),
		genMessageID(),
		genMessageID(),
	))

	properties.Property("thread id is inReplyTo when references is empty", prop.ForAll(
		func(inReplyTo, messageID string) bool {
			msg := &parser.NormalizedMessage{
				MessageID: messageID,
				InReplyTo: inReplyTo,
			}
			return ResolveThreadID(msg) == inReplyTo
		},
		genMessageID(),
		genMessageID(),
	))

	properties.Property("thread id is messageId when references and inReplyTo are empty", prop.ForAll(
		func(messageID string) bool {
			msg := &parser.NormalizedMessage{MessageID: messageID}
			return ResolveThreadID(msg) == messageID
		},
		genMessageID(),
	))

	properties.TestingRun(t)
}

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Re: Bug report", "Bug report"},
		{"RE: re: Fwd: Bug report", "Bug report"},
		{"Fw: invoice", "invoice"},
		{"Bug report", "Bug report"},
		{"  Re:   spaced  ", "spaced"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeSubject(tt.in); got != tt.want {
			t.Errorf("NormalizeSubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
