package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/telecasthq/telecast-backend/internal/auth"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"github.com/telecasthq/telecast-backend/internal/service"
	"go.uber.org/zap"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Logger          *zap.Logger
}

func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var body struct {
		Name            string  `json:"name"`
		MessageTemplate string  `json:"message_template"`
		RecipientIDs    []int   `json:"recipient_ids"`
		ScheduledAt     *string `json:"scheduled_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := c.CampaignService.Create(user, body.Name, body.MessageTemplate, body.RecipientIDs, body.ScheduledAt)
	if err != nil {
		var invalid *service.ErrInvalidMessage
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		c.Logger.Error("failed to create campaign", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	params := repository.CampaignListParams{
		Page:      page,
		Limit:     limit,
		Status:    q.Get("status"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	campaigns, total, params, err := c.CampaignService.List(user, params)
	if err != nil {
		c.Logger.Error("failed to list campaigns", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"pagination": map[string]int{
			"page":  params.Page,
			"limit": params.Limit,
			"total": total,
		},
	})
}

func (c *CampaignController) Count(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	count, err := c.CampaignService.Count(user)
	if err != nil {
		c.Logger.Error("failed to count campaigns", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to count campaigns")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Send enqueues an asynchronous dispatch job for the campaign.
func (c *CampaignController) Send(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	campaignID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid campaign id")
		return
	}

	var body struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Provider == "" {
		body.Provider = "whatsapp"
	}

	job, err := c.CampaignService.EnqueueSend(user, campaignID, body.Provider)
	if err != nil {
		var notFound *errs.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		c.Logger.Error("failed to enqueue campaign send", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      job.JobID,
		"campaign_id": job.CampaignID,
		"status":      "queued",
	})
}

// Preview renders the campaign template for a single contact.
func (c *CampaignController) Preview(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	campaignID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid campaign id")
		return
	}

	var body struct {
		ContactID int `json:"contact_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rendered, err := c.CampaignService.RenderPreview(user, campaignID, body.ContactID)
	if err != nil {
		var notFound *errs.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		c.Logger.Error("failed to render preview", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id":      campaignID,
		"contact_id":       body.ContactID,
		"rendered_message": rendered,
	})
}
