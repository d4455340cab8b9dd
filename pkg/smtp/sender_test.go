package smtp

import (
	"strings"
	"testing"
	"time"
)

func TestBuildReplyContent(t *testing.T) {
	cfg := AccountConfig{From: "support@example.com", FromName: "Support"}
	reply := Reply{
		To:         "jane@example.com",
		Subject:    "Bug report",
		Body:       "Thanks, we are on it.",
		InReplyTo:  "m1@example.com",
		References: []string{"m0@example.com", "m1@example.com"},
	}
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	content := string(buildReplyContent(cfg, reply, now))

	checks := []string{
		"From: Support <support@example.com>\r\n",
		"To: jane@example.com\r\n",
		"Subject: Re: Bug report\r\n",
		"In-Reply-To: <m1@example.com>\r\n",
		"References: <m0@example.com> <m1@example.com>\r\n",
		"Thanks, we are on it.",
	}
	for _, want := range checks {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q\n%s", want, content)
		}
	}

	headers, _, found := strings.Cut(content, "\r\n\r\n")
	if !found {
		t.Fatal("no header/body separator")
	}
	if strings.Contains(headers, "Thanks") {
		t.Error("body text leaked into headers")
	}
}

func TestBuildReplyContentKeepsExistingRePrefix(t *testing.T) {
	cfg := AccountConfig{From: "support@example.com"}
	reply := Reply{To: "jane@example.com", Subject: "Re: Bug report", Body: "x"}

	content := string(buildReplyContent(cfg, reply, time.Now()))

	if strings.Contains(content, "Re: Re:") {
		t.Error("subject got a doubled Re: prefix")
	}
}

func TestBuildReplyContentNoThreadHeadersForFreshMail(t *testing.T) {
	cfg := AccountConfig{From: "support@example.com"}
	reply := Reply{To: "jane@example.com", Subject: "Hello", Body: "x"}

	content := string(buildReplyContent(cfg, reply, time.Now()))

	if strings.Contains(content, "In-Reply-To:") || strings.Contains(content, "References:") {
		t.Error("thread headers present without thread ids")
	}
}
