package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
)

// ContactListParams carries the query knobs of GET /api/contacts. Sort
// fields and orders are whitelisted in List; anything else falls back to
// the defaults.
type ContactListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

type ContactRepositoryInterface interface {
	Create(c *model.Contact) error
	GetByIDs(userGoogleID string, ids []int) ([]model.Contact, error)
	FindByPhone(userGoogleID, phone string) (*model.Contact, error)
	List(userGoogleID string, p ContactListParams) ([]model.Contact, int, error)
	Count(userGoogleID string) (int, error)
	UpdateTelegram(userGoogleID string, contactID int, telegramID, telegramUsername, preferredProvider string) error
	GoogleIDsPresent(userGoogleID string, googleContactIDs []string) (map[string]int, error)
	UpdateFromGoogle(id int, name, phone, email string) error
	InsertFromGoogle(userGoogleID, name, phone, email, googleContactID string) error
}

type ContactRepository struct {
	DB *sql.DB
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)

var contactSortFields = map[string]bool{
	"name": true, "phone_number": true, "email": true,
	"telegram_id": true, "telegram_username": true,
	"preferred_provider": true, "created_at": true, "updated_at": true,
}

const contactColumns = `
    id, user_google_id, name, COALESCE(phone_number, ''), COALESCE(email, ''),
    COALESCE(telegram_id, ''), COALESCE(telegram_username, ''),
    COALESCE(preferred_provider, 'whatsapp'), COALESCE(google_contact_id, ''),
    created_at, updated_at
`

func scanContact(row interface{ Scan(...any) error }) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.ID, &c.UserGoogleID, &c.Name, &c.PhoneNumber, &c.Email,
		&c.TelegramID, &c.TelegramUsername, &c.PreferredProvider,
		&c.GoogleContactID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepository) Create(c *model.Contact) error {
	c.CreatedAt = time.Now()
	query := `
        INSERT INTO contacts (user_google_id, name, phone_number, email, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query, c.UserGoogleID, c.Name, c.PhoneNumber, c.Email).
		Scan(&c.ID, &c.CreatedAt)
}

// GetByIDs fetches the user's contacts matching ids. Contacts belonging to
// other users are silently excluded.
func (r *ContactRepository) GetByIDs(userGoogleID string, ids []int) ([]model.Contact, error) {
	query := `SELECT ` + contactColumns + `
        FROM contacts
        WHERE user_google_id = $1 AND id = ANY($2)
    `
	rows, err := r.DB.Query(query, userGoogleID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) FindByPhone(userGoogleID, phone string) (*model.Contact, error) {
	query := `SELECT ` + contactColumns + `
        FROM contacts
        WHERE user_google_id = $1 AND phone_number = $2
    `
	c, err := scanContact(r.DB.QueryRow(query, userGoogleID, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) List(userGoogleID string, p ContactListParams) ([]model.Contact, int, error) {
	where := `WHERE user_google_id = $1`
	args := []interface{}{userGoogleID}
	argPos := 2

	if p.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR phone_number ILIKE $%d OR email ILIKE $%d OR telegram_username ILIKE $%d)`,
			argPos, argPos, argPos, argPos)
		args = append(args, "%"+p.Search+"%")
		argPos++
	}

	sortBy := p.SortBy
	if !contactSortFields[sortBy] {
		sortBy = "name"
	}
	sortOrder := "ASC"
	if p.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM contacts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts ` + where +
		fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, total, rows.Err()
}

func (r *ContactRepository) Count(userGoogleID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM contacts WHERE user_google_id = $1`, userGoogleID).Scan(&count)
	return count, err
}

func (r *ContactRepository) UpdateTelegram(userGoogleID string, contactID int, telegramID, telegramUsername, preferredProvider string) error {
	if preferredProvider == "" {
		preferredProvider = "whatsapp"
	}
	query := `
        UPDATE contacts
        SET telegram_id = NULLIF($1, ''),
            telegram_username = NULLIF($2, ''),
            preferred_provider = $3,
            updated_at = NOW()
        WHERE id = $4 AND user_google_id = $5
    `
	res, err := r.DB.Exec(query, telegramID, telegramUsername, preferredProvider, contactID, userGoogleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewContactNotFound(contactID)
	}
	return nil
}

// GoogleIDsPresent returns which of the given google_contact_ids already
// exist for the user, mapped to their contact ids. The import service
// calls this in chunks instead of one query per contact.
func (r *ContactRepository) GoogleIDsPresent(userGoogleID string, googleContactIDs []string) (map[string]int, error) {
	query := `
        SELECT google_contact_id, id
        FROM contacts
        WHERE user_google_id = $1 AND google_contact_id = ANY($2)
    `
	rows, err := r.DB.Query(query, userGoogleID, pq.Array(googleContactIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	present := make(map[string]int)
	for rows.Next() {
		var googleID string
		var id int
		if err := rows.Scan(&googleID, &id); err != nil {
			return nil, err
		}
		present[googleID] = id
	}
	return present, rows.Err()
}

func (r *ContactRepository) UpdateFromGoogle(id int, name, phone, email string) error {
	query := `
        UPDATE contacts
        SET name = $1, phone_number = $2, email = $3, updated_at = NOW()
        WHERE id = $4
    `
	_, err := r.DB.Exec(query, name, phone, email, id)
	return err
}

func (r *ContactRepository) InsertFromGoogle(userGoogleID, name, phone, email, googleContactID string) error {
	query := `
        INSERT INTO contacts (user_google_id, name, phone_number, email, google_contact_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
    `
	_, err := r.DB.Exec(query, userGoogleID, name, phone, email, googleContactID)
	return err
}
