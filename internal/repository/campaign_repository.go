package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
)

type CampaignListParams struct {
	Page      int
	Limit     int
	Status    string
	SortBy    string
	SortOrder string
}

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign, recipientIDs []int) error
	GetByID(id int, userGoogleID string) (*model.Campaign, error)
	List(userGoogleID string, p CampaignListParams) ([]model.CampaignWithStats, int, error)
	Count(userGoogleID string) (int, error)
	UpdateStatus(campaignID int, status string) error
	RecipientContactIDs(campaignID int) ([]int, error)
	UpdateRecipientStatus(campaignID, contactID int, status string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

var campaignSortFields = map[string]bool{
	"name": true, "status": true, "created_at": true,
	"updated_at": true, "scheduled_at": true,
}

// campaign_recipients has a composite (campaign_id, contact_id) key, so
// recipients are counted by contact_id.
const campaignListQuery = `
        SELECT
            c.id, c.user_google_id, c.name, c.message_template, c.status,
            c.scheduled_at, c.created_at, c.updated_at,
            COUNT(cr.contact_id) AS total_recipients,
            COALESCE(SUM(CASE WHEN cr.status = 'sent' THEN 1 ELSE 0 END), 0) AS sent_count,
            COALESCE(SUM(CASE WHEN cr.status = 'failed' THEN 1 ELSE 0 END), 0) AS failed_count
        FROM campaigns c
        LEFT JOIN campaign_recipients cr ON c.id = cr.campaign_id
        `

// Create inserts the campaign and its recipient rows in one transaction.
// Recipient ids not belonging to the user are dropped.
func (r *CampaignRepository) Create(c *model.Campaign, recipientIDs []int) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO campaigns (user_google_id, name, message_template, status, scheduled_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id, created_at
    `
	err = tx.QueryRow(query, c.UserGoogleID, c.Name, c.MessageTemplate, c.Status, c.ScheduledAt).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return err
	}

	if len(recipientIDs) > 0 {
		rows, err := tx.Query(`
            SELECT id FROM contacts
            WHERE user_google_id = $1 AND id = ANY($2)
        `, c.UserGoogleID, pq.Array(recipientIDs))
		if err != nil {
			return err
		}

		validIDs := []int{}
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			validIDs = append(validIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, contactID := range validIDs {
			_, err := tx.Exec(`
                INSERT INTO campaign_recipients (campaign_id, contact_id, status)
                VALUES ($1, $2, 'pending')
            `, c.ID, contactID)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (r *CampaignRepository) GetByID(id int, userGoogleID string) (*model.Campaign, error) {
	query := `
        SELECT id, user_google_id, name, message_template, status, scheduled_at, created_at, updated_at
        FROM campaigns
        WHERE id = $1 AND user_google_id = $2
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id, userGoogleID).Scan(
		&c.ID, &c.UserGoogleID, &c.Name, &c.MessageTemplate, &c.Status,
		&c.ScheduledAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) List(userGoogleID string, p CampaignListParams) ([]model.CampaignWithStats, int, error) {
	where := `WHERE c.user_google_id = $1`
	args := []interface{}{userGoogleID}
	argPos := 2

	if p.Status != "" {
		where += fmt.Sprintf(` AND c.status = $%d`, argPos)
		args = append(args, p.Status)
		argPos++
	}

	sortBy := p.SortBy
	if !campaignSortFields[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if p.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns c `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := campaignListQuery + where + `
        GROUP BY c.id
    ` + fmt.Sprintf(` ORDER BY c.%s %s LIMIT $%d OFFSET $%d`, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []model.CampaignWithStats{}
	for rows.Next() {
		var c model.CampaignWithStats
		err := rows.Scan(
			&c.ID, &c.UserGoogleID, &c.Name, &c.MessageTemplate, &c.Status,
			&c.ScheduledAt, &c.CreatedAt, &c.UpdatedAt,
			&c.TotalRecipients, &c.SentCount, &c.FailedCount,
		)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

func (r *CampaignRepository) Count(userGoogleID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE user_google_id = $1`, userGoogleID).Scan(&count)
	return count, err
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.Exec(query, status, campaignID)
	return err
}

func (r *CampaignRepository) RecipientContactIDs(campaignID int) ([]int, error) {
	rows, err := r.DB.Query(`
        SELECT contact_id FROM campaign_recipients WHERE campaign_id = $1 ORDER BY contact_id
    `, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CampaignRepository) UpdateRecipientStatus(campaignID, contactID int, status string) error {
	query := `UPDATE campaign_recipients SET status = $1 WHERE campaign_id = $2 AND contact_id = $3`
	_, err := r.DB.Exec(query, status, campaignID, contactID)
	return err
}
