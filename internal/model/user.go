package model

import "time"

type User struct {
	GoogleID           string     `db:"google_id" json:"google_id"`
	Email              string     `db:"email" json:"email"`
	Name               string     `db:"name" json:"name"`
	GoogleRefreshToken string     `db:"google_refresh_token" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
