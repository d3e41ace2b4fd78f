package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/telecasthq/telecast-backend/internal/config"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/provider"
	"go.uber.org/zap"
)

// Sender delivers messages through the Telegram Bot API.
type Sender struct {
	botToken string
	apiURL   string
	batch    provider.BatchConfig
	client   *http.Client
	logger   *zap.Logger
}

var _ provider.Sender = (*Sender)(nil)

func NewSender(cfg config.TelegramConfig, batch provider.BatchConfig, logger *zap.Logger) *Sender {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &Sender{
		botToken: cfg.BotToken,
		apiURL:   apiURL,
		batch:    batch,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

func (s *Sender) Name() string { return provider.Telegram }

func (s *Sender) CheckRecipient(c model.Contact) string {
	if c.TelegramID == "" && c.TelegramUsername == "" {
		return "Missing Telegram ID"
	}
	return ""
}

// FormatIdentifier normalizes a raw chat identifier. Usernames keep their
// "@name" string form, numeric strings become int64 chat ids, anything
// else is invalid.
func FormatIdentifier(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if strings.HasPrefix(raw, "@") {
		return raw, true
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	return nil, false
}

func (s *Sender) Send(ctx context.Context, contacts []model.Contact, message string) ([]provider.SendResult, error) {
	if s.botToken == "" {
		return nil, fmt.Errorf("%w: Telegram bot token missing", errs.ErrProviderNotConfigured)
	}

	results := provider.SendInBatches(ctx, provider.Telegram, contacts, s.batch, func(ctx context.Context, c model.Contact) provider.SendResult {
		return s.sendOne(ctx, c, message)
	})
	return results, nil
}

type sendMessageRequest struct {
	ChatID    any    `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (s *Sender) sendOne(ctx context.Context, c model.Contact, message string) provider.SendResult {
	res := provider.SendResult{
		ContactID:   c.ID,
		ContactName: c.Name,
		Provider:    provider.Telegram,
	}

	identifier := c.TelegramID
	if identifier == "" {
		identifier = c.TelegramUsername
	}
	chatID, ok := FormatIdentifier(identifier)
	if !ok {
		res.Error = "Invalid Telegram identifier"
		return res
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      message,
		ParseMode: "HTML",
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	var data sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		res.Error = err.Error()
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !data.OK {
		desc := data.Description
		if desc == "" {
			desc = "Unknown error"
		}
		res.Error = fmt.Sprintf("Telegram API error: %s", desc)
		s.logger.Warn("telegram send failed",
			zap.Int("contact_id", c.ID),
			zap.Int("status", resp.StatusCode),
			zap.String("description", data.Description),
		)
		return res
	}

	res.Success = true
	res.MessageID = strconv.FormatInt(data.Result.MessageID, 10)
	return res
}
