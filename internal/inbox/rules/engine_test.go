package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
)

type stubRuleRepo struct {
	rules []*domain.Rule
}

func (s *stubRuleRepo) FindEnabledByInbox(inboxID string) ([]*domain.Rule, error) {
	return s.rules, nil
}

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) SendAutoReply(inbox *domain.Inbox, msg *domain.InboxMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg.MessageID)
	return nil
}

func rule(id string, priority int, stopOnMatch bool, conditions, actions string) *domain.Rule {
	return &domain.Rule{
		ID:          id,
		InboxID:     "inbox-1",
		Priority:    priority,
		StopOnMatch: stopOnMatch,
		Enabled:     true,
		Conditions:  conditions,
		Actions:     actions,
		CreatedAt:   time.Now(),
	}
}

func testMessage(subject, from string) *domain.InboxMessage {
	return &domain.InboxMessage{
		ID:        "msg-1",
		MessageID: "m1@example.com",
		Subject:   subject,
		FromEmail: from,
		Text:      "body text",
	}
}

func TestApplyStopOnMatch(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("high", 10, true,
			`{"subject":{"contains":"urgent"}}`,
			`{"setPriority":"HIGHEST"}`),
		rule("low", 5, false,
			`{"subject":{"contains":"urgent"}}`,
			`{"setPriority":"LOW","setLabels":["later"]}`),
	}}
	engine := NewEngine(repo, nil)

	outcome, err := engine.Apply("run-1", &domain.Inbox{ID: "inbox-1"}, testMessage("Urgent: server down", "jane@example.com"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if outcome.Priority != "HIGHEST" {
		t.Errorf("Priority = %q, want HIGHEST", outcome.Priority)
	}
	if len(outcome.Labels) != 0 {
		t.Errorf("Labels = %v, want none; the priority-10 rule stops evaluation", outcome.Labels)
	}
}

func TestApplyUrgentSetsPriority(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("urgent", 0, true,
			`{"all":[{"subject":{"contains":"urgent"}}]}`,
			`{"setPriority":"HIGHEST"}`),
	}}
	engine := NewEngine(repo, nil)

	outcome, err := engine.Apply("run-1", &domain.Inbox{ID: "inbox-1"}, testMessage("Urgent: server down", "jane@example.com"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if outcome.Priority != "HIGHEST" {
		t.Errorf("Priority = %q, want HIGHEST", outcome.Priority)
	}
}

func TestApplyFoldsMultipleRules(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("assign", 10, false,
			`{"from":{"endsWith":"@example.com"}}`,
			`{"assign":"user-7","setLabels":["email"]}`),
		rule("label", 5, false,
			`{"subject":{"contains":"invoice"}}`,
			`{"setLabels":["billing","email"]}`),
	}}
	engine := NewEngine(repo, nil)

	outcome, err := engine.Apply("run-1", &domain.Inbox{ID: "inbox-1"}, testMessage("Invoice #42", "jane@example.com"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if outcome.AssigneeID != "user-7" {
		t.Errorf("AssigneeID = %q, want user-7", outcome.AssigneeID)
	}
	want := []string{"email", "billing"}
	if len(outcome.Labels) != len(want) {
		t.Fatalf("Labels = %v, want %v", outcome.Labels, want)
	}
	for i, label := range want {
		if outcome.Labels[i] != label {
			t.Errorf("Labels[%d] = %q, want %q", i, outcome.Labels[i], label)
		}
	}
}

func TestApplyMarkAsSpam(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("spam", 0, true,
			`{"from":{"endsWith":"@spam.example"}}`,
			`{"markAsSpam":true}`),
	}}
	engine := NewEngine(repo, nil)

	outcome, err := engine.Apply("run-1", &domain.Inbox{ID: "inbox-1"}, testMessage("Cheap offers", "bot@spam.example"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if !outcome.MarkedSpam {
		t.Error("MarkedSpam = false, want true")
	}
}

func TestApplyAutoReplyOncePerMessage(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("ack-1", 10, false,
			`{"subject":{"contains":"bug"}}`,
			`{"autoReply":true}`),
		rule("ack-2", 5, false,
			`{"from":{"endsWith":"@example.com"}}`,
			`{"autoReply":true}`),
	}}
	sender := &recordingSender{}
	engine := NewEngine(repo, sender)

	inbox := &domain.Inbox{ID: "inbox-1", AutoReplyEnabled: true}
	if _, err := engine.Apply("run-1", inbox, testMessage("Bug report", "jane@example.com")); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Errorf("auto-reply sent %d times, want 1", len(sender.sent))
	}
}

func TestApplyAutoReplyDisabled(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("ack", 0, false,
			`{"subject":{"contains":"bug"}}`,
			`{"autoReply":true}`),
	}}
	sender := &recordingSender{}
	engine := NewEngine(repo, sender)

	inbox := &domain.Inbox{ID: "inbox-1", AutoReplyEnabled: false}
	if _, err := engine.Apply("run-1", inbox, testMessage("Bug report", "jane@example.com")); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("auto-reply sent %d times, want 0 when disabled", len(sender.sent))
	}
}

func TestApplyBadRuleContinues(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("broken", 10, false, `{not json`, `{}`),
		rule("works", 5, false,
			`{"subject":{"contains":"bug"}}`,
			`{"setPriority":"HIGH"}`),
	}}
	engine := NewEngine(repo, nil)

	outcome, err := engine.Apply("run-1", &domain.Inbox{ID: "inbox-1"}, testMessage("Bug report", "jane@example.com"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if outcome.Priority != "HIGH" {
		t.Errorf("Priority = %q, want HIGH; broken rule must not halt evaluation", outcome.Priority)
	}
}

func TestApplyAutoReplyFailureDoesNotHalt(t *testing.T) {
	repo := &stubRuleRepo{rules: []*domain.Rule{
		rule("ack", 10, false,
			`{"subject":{"contains":"bug"}}`,
			`{"autoReply":true,"setPriority":"HIGH"}`),
	}}
	sender := &recordingSender{err: fmt.Errorf("smtp down")}
	engine := NewEngine(repo, sender)

	inbox := &domain.Inbox{ID: "inbox-1", AutoReplyEnabled: true}
	outcome, err := engine.Apply("run-1", inbox, testMessage("Bug report", "jane@example.com"))
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if outcome.Priority != "HIGH" {
		t.Errorf("Priority = %q, want HIGH even when the auto-reply fails", outcome.Priority)
	}
	if outcome.Replied {
		t.Error("Replied = true after a failed send")
	}
}
