package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/telecasthq/telecast-backend/internal/model"
)

type MessageLogListParams struct {
	Page       int
	Limit      int
	Status     string
	CampaignID int
	ContactID  int
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

type MessageLogRepositoryInterface interface {
	Insert(l *model.MessageLog) error
	List(userGoogleID string, p MessageLogListParams) ([]model.MessageLogDetail, int, error)
	Stats(userGoogleID string, startDate, endDate *time.Time) (*model.MessageStats, error)
	Count(userGoogleID string) (int, error)
}

type MessageLogRepository struct {
	DB *sql.DB
}

var _ MessageLogRepositoryInterface = (*MessageLogRepository)(nil)

var messageLogSortFields = map[string]bool{
	"created_at": true, "status": true, "contact_id": true, "campaign_id": true,
}

func (r *MessageLogRepository) Insert(l *model.MessageLog) error {
	query := `
        INSERT INTO message_logs
        (user_google_id, contact_id, campaign_id, message_content, provider_message_id, provider, status, error_message, created_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(
		query,
		l.UserGoogleID, l.ContactID, l.CampaignID, l.MessageContent,
		l.ProviderMessageID, l.Provider, l.Status, l.ErrorMessage,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *MessageLogRepository) List(userGoogleID string, p MessageLogListParams) ([]model.MessageLogDetail, int, error) {
	where := `WHERE ml.user_google_id = $1`
	args := []interface{}{userGoogleID}
	argPos := 2

	appendFilter := func(clause string, value interface{}) {
		where += fmt.Sprintf(clause, argPos)
		args = append(args, value)
		argPos++
	}

	if p.Status != "" {
		appendFilter(` AND ml.status = $%d`, p.Status)
	}
	if p.CampaignID > 0 {
		appendFilter(` AND ml.campaign_id = $%d`, p.CampaignID)
	}
	if p.ContactID > 0 {
		appendFilter(` AND ml.contact_id = $%d`, p.ContactID)
	}
	if p.StartDate != nil {
		appendFilter(` AND ml.created_at >= $%d`, *p.StartDate)
	}
	if p.EndDate != nil {
		appendFilter(` AND ml.created_at <= $%d`, *p.EndDate)
	}

	sortBy := p.SortBy
	if !messageLogSortFields[sortBy] {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if p.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM message_logs ml `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT
            ml.id, ml.user_google_id, ml.contact_id, ml.campaign_id,
            ml.message_content, COALESCE(ml.provider_message_id, ''),
            ml.provider, ml.status, COALESCE(ml.error_message, ''), ml.created_at,
            COALESCE(c.name, ''), COALESCE(c.phone_number, ''),
            COALESCE(camp.name, ''), COALESCE(camp.status, '')
        FROM message_logs ml
        LEFT JOIN contacts c ON ml.contact_id = c.id
        LEFT JOIN campaigns camp ON ml.campaign_id = camp.id
        ` + where + fmt.Sprintf(` ORDER BY ml.%s %s LIMIT $%d OFFSET $%d`, sortBy, sortOrder, argPos, argPos+1)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := []model.MessageLogDetail{}
	for rows.Next() {
		var l model.MessageLogDetail
		err := rows.Scan(
			&l.ID, &l.UserGoogleID, &l.ContactID, &l.CampaignID,
			&l.MessageContent, &l.ProviderMessageID,
			&l.Provider, &l.Status, &l.ErrorMessage, &l.CreatedAt,
			&l.ContactName, &l.ContactPhone,
			&l.CampaignName, &l.CampaignStatus,
		)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *MessageLogRepository) Stats(userGoogleID string, startDate, endDate *time.Time) (*model.MessageStats, error) {
	where := `WHERE user_google_id = $1`
	args := []interface{}{userGoogleID}
	argPos := 2

	if startDate != nil {
		where += fmt.Sprintf(` AND created_at >= $%d`, argPos)
		args = append(args, *startDate)
		argPos++
	}
	if endDate != nil {
		where += fmt.Sprintf(` AND created_at <= $%d`, argPos)
		args = append(args, *endDate)
	}

	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
            COUNT(DISTINCT contact_id),
            COUNT(DISTINCT campaign_id)
        FROM message_logs ` + where

	var stats model.MessageStats
	err := r.DB.QueryRow(query, args...).Scan(
		&stats.TotalMessages, &stats.SentCount, &stats.FailedCount,
		&stats.UniqueContacts, &stats.CampaignsCount,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *MessageLogRepository) Count(userGoogleID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM message_logs WHERE user_google_id = $1`, userGoogleID).Scan(&count)
	return count, err
}
