package repository

import (
	"database/sql"

	"github.com/telecasthq/telecast-backend/internal/model"
)

type UserRepositoryInterface interface {
	Upsert(u *model.User) error
	GetByGoogleID(googleID string) (*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

// Upsert inserts the user or refreshes their profile and refresh token on
// re-login.
func (r *UserRepository) Upsert(u *model.User) error {
	query := `
        INSERT INTO users (google_id, email, name, google_refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        ON CONFLICT (google_id) DO UPDATE
        SET email = EXCLUDED.email,
            name = EXCLUDED.name,
            google_refresh_token = COALESCE(NULLIF(EXCLUDED.google_refresh_token, ''), users.google_refresh_token),
            updated_at = NOW()
    `
	_, err := r.DB.Exec(query, u.GoogleID, u.Email, u.Name, u.GoogleRefreshToken)
	return err
}

func (r *UserRepository) GetByGoogleID(googleID string) (*model.User, error) {
	query := `
        SELECT google_id, email, name, COALESCE(google_refresh_token, ''), created_at, updated_at
        FROM users
        WHERE google_id = $1
    `
	var u model.User
	err := r.DB.QueryRow(query, googleID).Scan(
		&u.GoogleID, &u.Email, &u.Name, &u.GoogleRefreshToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
