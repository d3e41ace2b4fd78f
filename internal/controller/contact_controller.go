package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/telecasthq/telecast-backend/internal/auth"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"github.com/telecasthq/telecast-backend/internal/service"
	"go.uber.org/zap"
)

type ContactController struct {
	ContactService *service.ContactService
	Logger         *zap.Logger
}

func (c *ContactController) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	params := repository.ContactListParams{
		Page:      page,
		Limit:     limit,
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	contacts, total, params, err := c.ContactService.List(user, params)
	if err != nil {
		c.Logger.Error("failed to list contacts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"pagination": map[string]int{
			"page":  params.Page,
			"limit": params.Limit,
			"total": total,
		},
	})
}

func (c *ContactController) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var body struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := c.ContactService.Create(user, body.Name, body.PhoneNumber, body.Email)
	if err != nil {
		var invalid *service.ErrInvalidMessage
		var dup *errs.ErrDuplicateContact
		switch {
		case errors.As(err, &invalid):
			writeError(w, http.StatusBadRequest, invalid.Reason)
		case errors.As(err, &dup):
			writeError(w, http.StatusConflict, "A contact with this phone number already exists")
		default:
			c.Logger.Error("failed to create contact", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create contact")
		}
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (c *ContactController) Import(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	result, err := c.ContactService.ImportFromGoogle(r.Context(), user)
	if err != nil {
		c.Logger.Error("google contacts import failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *ContactController) UpdateTelegram(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var body struct {
		ContactID         int    `json:"contact_id"`
		TelegramID        string `json:"telegram_id"`
		TelegramUsername  string `json:"telegram_username"`
		PreferredProvider string `json:"preferred_provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.ContactID == 0 {
		writeError(w, http.StatusBadRequest, "contact_id is required")
		return
	}

	if err := c.ContactService.UpdateTelegram(user, body.ContactID, body.TelegramID, body.TelegramUsername, body.PreferredProvider); err != nil {
		var notFound *errs.ErrContactNotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		c.Logger.Error("failed to update telegram details", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
