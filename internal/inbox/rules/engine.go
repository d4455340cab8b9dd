package rules

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
	"github.com/taskosaur/mailroom/internal/inbox/repository"
)

// Actions is the stored action map of one rule.
type Actions struct {
	Assign      string   `json:"assign,omitempty"`
	SetLabels   []string `json:"setLabels,omitempty"`
	SetPriority string   `json:"setPriority,omitempty"`
	MarkAsSpam  bool     `json:"markAsSpam,omitempty"`
	AutoReply   bool     `json:"autoReply,omitempty"`
}

// Outcome is the immutable result of evaluating all rules against one
// message. The materializer consumes it as a parameter; nothing is written
// back onto the message record itself.
type Outcome struct {
	Priority   string
	AssigneeID string
	Labels     []string
	MarkedSpam bool
	Replied    bool
}

// ReplySender sends the templated auto-reply for a message. The send happens
// during rule evaluation rather than deferred, reusing the sync's connection
// context.
type ReplySender interface {
	SendAutoReply(inbox *domain.Inbox, msg *domain.InboxMessage) error
}

// Engine evaluates an inbox's rules against ingested messages.
type Engine struct {
	rules  repository.RuleRepository
	sender ReplySender
}

// NewEngine creates a rule engine. sender may be nil when no SMTP identity
// is configured; autoReply actions are then skipped.
func NewEngine(rules repository.RuleRepository, sender ReplySender) *Engine {
	return &Engine{rules: rules, sender: sender}
}

// Apply evaluates the inbox's enabled rules in descending priority then
// ascending creation order. Every matching rule's actions fold into the
// outcome; a matching rule with stopOnMatch halts evaluation. Per-rule
// errors are logged and evaluation continues with the next rule.
func (e *Engine) Apply(runID string, inbox *domain.Inbox, msg *domain.InboxMessage) (Outcome, error) {
	var outcome Outcome

	ruleList, err := e.rules.FindEnabledByInbox(inbox.ID)
	if err != nil {
		return outcome, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(ruleList) == 0 {
		return outcome, nil
	}

	fields := Fields{
		From:    msg.FromEmail,
		Subject: msg.Subject,
		Body:    messageBody(msg),
		To:      msg.ToEmails,
		Cc:      msg.CcEmails,
	}

	for _, rule := range ruleList {
		cond, err := ParseCondition(rule.Conditions)
		if err != nil {
			log.Printf("[RuleEngine] run=%s rule=%s skipped: %v", runID, rule.ID, err)
			continue
		}

		matched, err := cond.Evaluate(fields)
		if err != nil {
			log.Printf("[RuleEngine] run=%s rule=%s evaluation failed: %v", runID, rule.ID, err)
			continue
		}
		if !matched {
			continue
		}

		e.applyActions(runID, rule, inbox, msg, &outcome)

		if rule.StopOnMatch {
			break
		}
	}

	return outcome, nil
}

func (e *Engine) applyActions(runID string, rule *domain.Rule, inbox *domain.Inbox, msg *domain.InboxMessage, outcome *Outcome) {
	var actions Actions
	if err := json.Unmarshal([]byte(rule.Actions), &actions); err != nil {
		log.Printf("[RuleEngine] run=%s rule=%s invalid actions: %v", runID, rule.ID, err)
		return
	}

	if actions.SetPriority != "" {
		outcome.Priority = actions.SetPriority
	}
	if actions.Assign != "" {
		outcome.AssigneeID = actions.Assign
	}
	if len(actions.SetLabels) > 0 {
		outcome.Labels = mergeLabels(outcome.Labels, actions.SetLabels)
	}
	if actions.MarkAsSpam {
		outcome.MarkedSpam = true
	}
	if actions.AutoReply && !outcome.Replied {
		if e.sender == nil || !inbox.AutoReplyEnabled {
			log.Printf("[RuleEngine] run=%s rule=%s autoReply skipped: not configured", runID, rule.ID)
			return
		}
		if err := e.sender.SendAutoReply(inbox, msg); err != nil {
			log.Printf("[RuleEngine] run=%s rule=%s autoReply failed: %v", runID, rule.ID, err)
			return
		}
		outcome.Replied = true
	}
}

func messageBody(msg *domain.InboxMessage) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.HTML
}

func mergeLabels(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[strings.ToLower(l)] = true
	}
	for _, l := range added {
		if l != "" && !seen[strings.ToLower(l)] {
			existing = append(existing, l)
			seen[strings.ToLower(l)] = true
		}
	}
	return existing
}
