package model

import "time"

// Contact is an addressable recipient. Provider-specific fields are plain
// strings; empty means the contact cannot be reached on that provider.
type Contact struct {
	ID                int        `db:"id" json:"id"`
	UserGoogleID      string     `db:"user_google_id" json:"-"`
	Name              string     `db:"name" json:"name"`
	PhoneNumber       string     `db:"phone_number" json:"phone_number"`
	Email             string     `db:"email" json:"email"`
	TelegramID        string     `db:"telegram_id" json:"telegram_id"`
	TelegramUsername  string     `db:"telegram_username" json:"telegram_username"`
	PreferredProvider string     `db:"preferred_provider" json:"preferred_provider"`
	GoogleContactID   string     `db:"google_contact_id" json:"google_contact_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
