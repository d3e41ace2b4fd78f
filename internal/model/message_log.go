package model

import "time"

const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// MessageLog records one delivery attempt. Rows are written once after a
// dispatch completes and never updated in place.
type MessageLog struct {
	ID                int       `db:"id" json:"id"`
	UserGoogleID      string    `db:"user_google_id" json:"-"`
	ContactID         int       `db:"contact_id" json:"contact_id"`
	CampaignID        *int      `db:"campaign_id" json:"campaign_id,omitempty"`
	MessageContent    string    `db:"message_content" json:"message_content"`
	ProviderMessageID string    `db:"provider_message_id" json:"provider_message_id,omitempty"`
	Provider          string    `db:"provider" json:"provider"`
	Status            string    `db:"status" json:"status"`
	ErrorMessage      string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// MessageLogDetail joins in contact and campaign names for the logs view.
type MessageLogDetail struct {
	MessageLog
	ContactName    string `json:"contact_name"`
	ContactPhone   string `json:"contact_phone"`
	CampaignName   string `json:"campaign_name,omitempty"`
	CampaignStatus string `json:"campaign_status,omitempty"`
}

// MessageStats aggregates a user's delivery history.
type MessageStats struct {
	TotalMessages  int `json:"total_messages"`
	SentCount      int `json:"sent_count"`
	FailedCount    int `json:"failed_count"`
	UniqueContacts int `json:"unique_contacts"`
	CampaignsCount int `json:"campaigns_count"`
}
