package rules

import "testing"

func TestConditionEvaluate(t *testing.T) {
	fields := Fields{
		From:    "jane@example.com",
		Subject: "Urgent: server down",
		Body:    "production is on fire",
		To:      "support@example.com",
		Cc:      "ops@example.com",
	}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"contains case-insensitive", `{"subject":{"contains":"urgent"}}`, true},
		{"contains miss", `{"subject":{"contains":"lunch"}}`, false},
		{"equals", `{"from":{"equals":"jane@example.com"}}`, true},
		{"startsWith", `{"subject":{"startsWith":"urgent"}}`, true},
		{"endsWith", `{"from":{"endsWith":"@example.com"}}`, true},
		{"matches regex", `{"body":{"matches":"on\\s+fire"}}`, true},
		{"all requires every child", `{"all":[{"subject":{"contains":"urgent"}},{"from":{"endsWith":"@example.com"}}]}`, true},
		{"all short-circuits false", `{"all":[{"subject":{"contains":"lunch"}},{"from":{"endsWith":"@example.com"}}]}`, false},
		{"any needs one child", `{"any":[{"subject":{"contains":"lunch"}},{"cc":{"contains":"ops@"}}]}`, true},
		{"any all miss", `{"any":[{"subject":{"contains":"lunch"}},{"cc":{"contains":"noone@"}}]}`, false},
		{"multiple predicates AND on one node", `{"subject":{"contains":"urgent"},"from":{"endsWith":"@example.com"}}`, true},
		{"multiple predicates one misses", `{"subject":{"contains":"urgent"},"from":{"endsWith":"@other.com"}}`, false},
		{"nested any inside all", `{"all":[{"any":[{"from":{"endsWith":"@example.com"}},{"from":{"endsWith":"@other.com"}}]},{"subject":{"contains":"server"}}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseCondition(tt.raw)
			if err != nil {
				t.Fatalf("ParseCondition() error: %v", err)
			}
			got, err := cond.Evaluate(fields)
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConditionErrors(t *testing.T) {
	if _, err := ParseCondition(""); err == nil {
		t.Error("ParseCondition(\"\") should fail")
	}
	if _, err := ParseCondition("{bad json"); err == nil {
		t.Error("ParseCondition with invalid json should fail")
	}

	cond, err := ParseCondition(`{"subject":{"matches":"("}}`)
	if err != nil {
		t.Fatalf("ParseCondition() error: %v", err)
	}
	if _, err := cond.Evaluate(Fields{Subject: "anything"}); err == nil {
		t.Error("Evaluate with invalid regex should surface an error")
	}
}
