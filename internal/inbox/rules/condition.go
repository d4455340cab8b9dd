package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Predicate is one field operator. Exactly one operator should be set.
type Predicate struct {
	Equals     string `json:"equals,omitempty"`
	Contains   string `json:"contains,omitempty"`
	Matches    string `json:"matches,omitempty"`
	StartsWith string `json:"startsWith,omitempty"`
	EndsWith   string `json:"endsWith,omitempty"`
}

// Condition is a tree: {any:[...]} ORs its children and short-circuits true,
// {all:[...]} ANDs them and short-circuits false, and a node with field
// predicates matches when every set predicate matches.
type Condition struct {
	Any []Condition `json:"any,omitempty"`
	All []Condition `json:"all,omitempty"`

	From    *Predicate `json:"from,omitempty"`
	Subject *Predicate `json:"subject,omitempty"`
	Body    *Predicate `json:"body,omitempty"`
	To      *Predicate `json:"to,omitempty"`
	Cc      *Predicate `json:"cc,omitempty"`
}

// Fields carries the message values conditions resolve against.
type Fields struct {
	From    string
	Subject string
	Body    string
	To      string
	Cc      string
}

// ParseCondition decodes a stored condition tree.
func ParseCondition(raw string) (*Condition, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty condition")
	}
	var cond Condition
	if err := json.Unmarshal([]byte(raw), &cond); err != nil {
		return nil, fmt.Errorf("invalid condition json: %w", err)
	}
	return &cond, nil
}

// Evaluate walks the tree. Operator errors (a bad regex) propagate so the
// caller can log them per rule and move on.
func (c *Condition) Evaluate(f Fields) (bool, error) {
	if len(c.Any) > 0 {
		for i := range c.Any {
			ok, err := c.Any[i].Evaluate(f)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	if len(c.All) > 0 {
		for i := range c.All {
			ok, err := c.All[i].Evaluate(f)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	checks := []struct {
		pred  *Predicate
		value string
	}{
		{c.From, f.From},
		{c.Subject, f.Subject},
		{c.Body, f.Body},
		{c.To, f.To},
		{c.Cc, f.Cc},
	}

	matchedAny := false
	for _, check := range checks {
		if check.pred == nil {
			continue
		}
		ok, err := check.pred.match(check.value)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		matchedAny = true
	}
	return matchedAny, nil
}

func (p *Predicate) match(value string) (bool, error) {
	lower := strings.ToLower(value)
	switch {
	case p.Equals != "":
		return strings.EqualFold(value, p.Equals), nil
	case p.Contains != "":
		return strings.Contains(lower, strings.ToLower(p.Contains)), nil
	case p.Matches != "":
		re, err := regexp.Compile("(?i)" + p.Matches)
		if err != nil {
			return false, fmt.Errorf("invalid matches pattern %q: %w", p.Matches, err)
		}
		return re.MatchString(value), nil
	case p.StartsWith != "":
		return strings.HasPrefix(lower, strings.ToLower(p.StartsWith)), nil
	case p.EndsWith != "":
		return strings.HasSuffix(lower, strings.ToLower(p.EndsWith)), nil
	}
	return false, fmt.Errorf("predicate has no operator")
}
