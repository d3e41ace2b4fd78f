package service

import (
	"context"
	"fmt"

	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/provider"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"go.uber.org/zap"
)

// MaxMessageLength is shared by WhatsApp and Telegram.
const MaxMessageLength = 4096

// InvalidRecipientsError blocks a dispatch when contacts are missing the
// fields the selected provider needs. The handler surfaces the list.
type InvalidRecipientsError struct {
	Provider string
	Invalid  []provider.InvalidContact
}

func (e *InvalidRecipientsError) Error() string {
	return fmt.Sprintf("%d contacts missing %s information", len(e.Invalid), e.Provider)
}

// ErrNoValidContacts is returned when none of the requested recipient ids
// resolve to the user's contacts.
type ErrNoValidContacts struct{}

func (e *ErrNoValidContacts) Error() string { return "no valid contacts found" }

// ErrInvalidMessage is returned on an empty or oversized message body.
type ErrInvalidMessage struct {
	Reason string
}

func (e *ErrInvalidMessage) Error() string { return e.Reason }

type SendSummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type SendOutcome struct {
	Results []provider.SendResult `json:"results"`
	Summary SendSummary           `json:"summary"`
}

type MessageService struct {
	Router       *provider.Router
	ContactRepo  repository.ContactRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	LogRepo      repository.MessageLogRepositoryInterface
	Logger       *zap.Logger
}

// SendToContacts runs the full dispatch flow: resolve recipients, validate
// them against the provider, dispatch, write one log row per result, and
// flip the campaign to sending. The returned outcome is complete even when
// every individual send failed; only validation and configuration problems
// come back as errors.
func (s *MessageService) SendToContacts(ctx context.Context, user *model.User, providerName, message string, contactIDs []int, campaignID *int) (*SendOutcome, error) {
	// Handlers validate too; re-check here so the invariant holds no
	// matter who calls.
	if len(message) == 0 || len(message) > MaxMessageLength {
		return nil, &ErrInvalidMessage{Reason: fmt.Sprintf("message length must be between 1 and %d characters", MaxMessageLength)}
	}

	contacts, err := s.ContactRepo.GetByIDs(user.GoogleID, contactIDs)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, &ErrNoValidContacts{}
	}

	valid, invalid, err := s.Router.Validate(providerName, contacts)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, &InvalidRecipientsError{Provider: providerName, Invalid: invalid}
	}

	var campaign *model.Campaign
	if campaignID != nil {
		campaign, err = s.CampaignRepo.GetByID(*campaignID, user.GoogleID)
		if err != nil {
			return nil, err
		}
	}

	results, err := s.Router.Dispatch(ctx, providerName, contacts, message)
	if err != nil {
		return nil, err
	}

	summary := SendSummary{Total: len(results)}
	for _, res := range results {
		if res.Success {
			summary.Sent++
		} else {
			summary.Failed++
		}

		status := model.MessageStatusSent
		if !res.Success {
			status = model.MessageStatusFailed
		}
		entry := &model.MessageLog{
			UserGoogleID:      user.GoogleID,
			ContactID:         res.ContactID,
			CampaignID:        campaignID,
			MessageContent:    message,
			ProviderMessageID: res.MessageID,
			Provider:          providerName,
			Status:            status,
			ErrorMessage:      res.Error,
		}
		if err := s.LogRepo.Insert(entry); err != nil {
			// The send already happened; losing the log row must not fail
			// the request.
			s.Logger.Error("failed to log message",
				zap.Int("contact_id", res.ContactID),
				zap.Error(err),
			)
		}
	}

	if campaign != nil {
		if err := s.CampaignRepo.UpdateStatus(campaign.ID, model.CampaignStatusSending); err != nil {
			s.Logger.Error("failed to update campaign status",
				zap.Int("campaign_id", campaign.ID),
				zap.Error(err),
			)
		}
	}

	s.Logger.Info("message dispatch completed",
		zap.String("provider", providerName),
		zap.Int("total", summary.Total),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
	)

	return &SendOutcome{Results: results, Summary: summary}, nil
}
