package domain

import "time"

// SyncStatus is the terminal state of one sync run.
type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "RUNNING"
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// SyncLog records one orchestrator run for an account. A failed sync is
// surfaced only here and as lastSyncError on the account; no alerting.
type SyncLog struct {
	ID        string `json:"id" gorm:"primaryKey"`
	AccountID string `json:"account_id" gorm:"index;not null"`
	RunID     string `json:"run_id" gorm:"index"`
	Trigger   string `json:"trigger"` // manual or scheduled

	Status    SyncStatus `json:"status" gorm:"default:RUNNING"`
	Processed int        `json:"processed"`
	Created   int        `json:"created"`
	Commented int        `json:"commented"`
	Skipped   int        `json:"skipped"`
	Error     string     `json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
