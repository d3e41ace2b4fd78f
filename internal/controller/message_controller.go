package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/telecasthq/telecast-backend/internal/auth"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"github.com/telecasthq/telecast-backend/internal/service"
	"go.uber.org/zap"
)

type MessageController struct {
	MessageService *service.MessageService
	LogRepo        repository.MessageLogRepositoryInterface
	Logger         *zap.Logger
}

// Send dispatches a message to the selected contacts synchronously and
// returns per-recipient results.
func (c *MessageController) Send(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var body struct {
		Provider   string `json:"provider"`
		Message    string `json:"message"`
		ContactIDs []int  `json:"contact_ids"`
		CampaignID *int   `json:"campaign_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.Provider == "" {
		writeError(w, http.StatusBadRequest, "Provider is required")
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len(body.Message) > service.MaxMessageLength {
		writeError(w, http.StatusBadRequest, "Message is too long. Maximum 4096 characters allowed.")
		return
	}
	if len(body.ContactIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one contact is required")
		return
	}

	outcome, err := c.MessageService.SendToContacts(r.Context(), user, body.Provider, body.Message, body.ContactIDs, body.CampaignID)
	if err != nil {
		c.respondSendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": outcome.Results,
		"summary": outcome.Summary,
	})
}

func (c *MessageController) respondSendError(w http.ResponseWriter, err error) {
	var invalidMsg *service.ErrInvalidMessage
	var noValid *service.ErrNoValidContacts
	var invalidRecipients *service.InvalidRecipientsError
	var campaignNotFound *errs.ErrCampaignNotFound

	switch {
	case errors.Is(err, errs.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidMsg):
		writeError(w, http.StatusBadRequest, invalidMsg.Reason)
	case errors.As(err, &noValid):
		writeError(w, http.StatusBadRequest, "No valid contacts found")
	case errors.As(err, &invalidRecipients):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":            invalidRecipients.Error(),
			"invalid_contacts": invalidRecipients.Invalid,
		})
	case errors.As(err, &campaignNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrProviderNotConfigured):
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		c.Logger.Error("message send failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to send messages")
	}
}

// Logs returns the user's message history with filters and stats.
func (c *MessageController) Logs(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	campaignID, _ := strconv.Atoi(q.Get("campaign_id"))
	contactID, _ := strconv.Atoi(q.Get("contact_id"))

	params := repository.MessageLogListParams{
		Page:       page,
		Limit:      limit,
		Status:     q.Get("status"),
		CampaignID: campaignID,
		ContactID:  contactID,
		StartDate:  parseDate(q.Get("start_date")),
		EndDate:    parseDate(q.Get("end_date")),
		SortBy:     q.Get("sort_by"),
		SortOrder:  q.Get("sort_order"),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	logs, total, err := c.LogRepo.List(user.GoogleID, params)
	if err != nil {
		c.Logger.Error("failed to list message logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list message logs")
		return
	}

	stats, err := c.LogRepo.Stats(user.GoogleID, params.StartDate, params.EndDate)
	if err != nil {
		c.Logger.Error("failed to load message stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load message stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"stats": stats,
		"pagination": map[string]int{
			"page":  params.Page,
			"limit": params.Limit,
			"total": total,
		},
	})
}

func (c *MessageController) Count(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	count, err := c.LogRepo.Count(user.GoogleID)
	if err != nil {
		c.Logger.Error("failed to count message logs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to count message logs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// parseDate accepts either a date-only or RFC 3339 timestamp filter.
func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
