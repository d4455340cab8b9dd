package domain

import "time"

// Rule is a stored condition -> action pair evaluated against each ingested
// message. Rules run in descending priority, then ascending creation time.
// Conditions and Actions hold the JSON forms parsed by the rules package.
type Rule struct {
	ID      string `json:"id" gorm:"primaryKey"`
	InboxID string `json:"inbox_id" gorm:"index;not null"`

	Name        string `json:"name"`
	Priority    int    `json:"priority" gorm:"default:0;index"`
	StopOnMatch bool   `json:"stop_on_match" gorm:"default:false"`
	Enabled     bool   `json:"enabled" gorm:"default:true"`

	Conditions string `json:"conditions" gorm:"type:text"`
	Actions    string `json:"actions" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
