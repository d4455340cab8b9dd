package scheduler

import (
	"testing"
	"time"

	"github.com/taskosaur/mailroom/internal/inbox/domain"
)

func TestDue(t *testing.T) {
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	past := func(minutes int) *time.Time {
		ts := now.Add(-time.Duration(minutes) * time.Minute)
		return &ts
	}

	tests := []struct {
		name     string
		lastSync *time.Time
		interval int
		want     bool
	}{
		{"never synced", nil, 5, true},
		{"interval elapsed", past(10), 5, true},
		{"interval exactly elapsed", past(5), 5, true},
		{"interval not elapsed", past(2), 5, false},
		{"zero interval falls back to five minutes", past(6), 0, true},
		{"zero interval not yet due", past(3), 0, false},
		{"long custom interval", past(30), 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.MailAccount{LastSyncAt: tt.lastSync}
			inbox := &domain.Inbox{SyncIntervalMinutes: tt.interval}
			if got := due(account, inbox, now); got != tt.want {
				t.Errorf("due() = %v, want %v", got, tt.want)
			}
		})
	}
}
