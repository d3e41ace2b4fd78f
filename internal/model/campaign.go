package model

import "time"

// Campaign statuses: draft -> scheduled -> sending -> completed.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusCompleted = "completed"
)

type Campaign struct {
	ID              int        `db:"id" json:"id"`
	UserGoogleID    string     `db:"user_google_id" json:"-"`
	Name            string     `db:"name" json:"name"`
	MessageTemplate string     `db:"message_template" json:"message_template"`
	Status          string     `db:"status" json:"status"`
	ScheduledAt     *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CampaignWithStats is the list-view row: campaign plus recipient counters.
type CampaignWithStats struct {
	Campaign
	TotalRecipients int `json:"total_recipients"`
	SentCount       int `json:"sent_count"`
	FailedCount     int `json:"failed_count"`
}

// CampaignRecipient rows are keyed by (campaign_id, contact_id).
type CampaignRecipient struct {
	CampaignID int    `db:"campaign_id" json:"campaign_id"`
	ContactID  int    `db:"contact_id" json:"contact_id"`
	Status     string `db:"status" json:"status"` // pending, sent, failed
}
