package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/telecasthq/telecast-backend/internal/config"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/provider"
	"go.uber.org/zap"
)

// Sender delivers text messages through Infobip's WhatsApp API.
type Sender struct {
	apiKey  string
	baseURL string
	from    string
	batch   provider.BatchConfig
	client  *http.Client
	logger  *zap.Logger
}

var _ provider.Sender = (*Sender)(nil)

func NewSender(cfg config.InfobipConfig, batch provider.BatchConfig, logger *zap.Logger) *Sender {
	return &Sender{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		from:    cfg.Sender,
		batch:   batch,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (s *Sender) Name() string { return provider.WhatsApp }

func (s *Sender) CheckRecipient(c model.Contact) string {
	if c.PhoneNumber == "" {
		return "Missing phone number"
	}
	return ""
}

func (s *Sender) Send(ctx context.Context, contacts []model.Contact, message string) ([]provider.SendResult, error) {
	if s.apiKey == "" || s.baseURL == "" || s.from == "" {
		return nil, fmt.Errorf("%w: Infobip credentials missing", errs.ErrProviderNotConfigured)
	}

	results := provider.SendInBatches(ctx, provider.WhatsApp, contacts, s.batch, func(ctx context.Context, c model.Contact) provider.SendResult {
		return s.sendOne(ctx, c, message)
	})
	return results, nil
}

type messagePayload struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Content messageContent `json:"content"`
}

type messageContent struct {
	Text string `json:"text"`
}

type messageResponse struct {
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
	Messages  []struct {
		MessageID string `json:"messageId"`
	} `json:"messages"`
}

func (s *Sender) sendOne(ctx context.Context, c model.Contact, message string) provider.SendResult {
	res := provider.SendResult{
		ContactID:   c.ID,
		ContactName: c.Name,
		Provider:    provider.WhatsApp,
	}

	body, err := json.Marshal(messagePayload{
		From:    s.from,
		To:      c.PhoneNumber,
		Content: messageContent{Text: message},
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/whatsapp/1/message/text", bytes.NewReader(body))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Authorization", "App "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	var data messageResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Prefer the API's own message field, fall back to the raw body.
		_ = json.Unmarshal(raw, &data)
		if data.Message != "" {
			res.Error = data.Message
		} else {
			res.Error = fmt.Sprintf("%d - %s", resp.StatusCode, string(raw))
		}
		s.logger.Warn("whatsapp send failed",
			zap.Int("contact_id", c.ID),
			zap.Int("status", resp.StatusCode),
		)
		return res
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		res.Error = err.Error()
		return res
	}

	// Infobip sometimes nests the id under messages[0].
	messageID := data.MessageID
	if messageID == "" && len(data.Messages) > 0 {
		messageID = data.Messages[0].MessageID
	}

	res.Success = true
	res.MessageID = messageID
	return res
}
