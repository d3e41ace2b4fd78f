package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/queue"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"go.uber.org/zap"
)

// CampaignSendTopic carries queued campaign dispatch jobs.
const CampaignSendTopic = "campaign_sends"

// SendJob is the payload published for an asynchronous campaign send.
type SendJob struct {
	JobID        string `json:"job_id"`
	CampaignID   int    `json:"campaign_id"`
	UserGoogleID string `json:"user_google_id"`
	Provider     string `json:"provider"`
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	UserRepo     repository.UserRepositoryInterface
	Messages     *MessageService
	Queue        queue.Queue
	Logger       *zap.Logger
}

// Create validates and stores a campaign. A future scheduled_at puts it in
// scheduled status, otherwise it starts as a draft.
func (s *CampaignService) Create(user *model.User, name, messageTemplate string, recipientIDs []int, scheduledAt *string) (*model.Campaign, error) {
	if name == "" {
		return nil, &ErrInvalidMessage{Reason: "Campaign name is required"}
	}
	if messageTemplate == "" {
		return nil, &ErrInvalidMessage{Reason: "Message template is required"}
	}
	if len(messageTemplate) > MaxMessageLength {
		return nil, &ErrInvalidMessage{Reason: fmt.Sprintf("Message template is too long. Maximum %d characters allowed.", MaxMessageLength)}
	}

	c := &model.Campaign{
		UserGoogleID:    user.GoogleID,
		Name:            name,
		MessageTemplate: messageTemplate,
		Status:          model.CampaignStatusDraft,
	}

	if scheduledAt != nil && *scheduledAt != "" {
		t, err := time.Parse(time.RFC3339, *scheduledAt)
		if err != nil {
			return nil, &ErrInvalidMessage{Reason: "Invalid scheduled date. Must be RFC 3339."}
		}
		if !t.After(time.Now()) {
			return nil, &ErrInvalidMessage{Reason: "Invalid scheduled date. Must be a future date."}
		}
		c.ScheduledAt = &t
		c.Status = model.CampaignStatusScheduled
	}

	if err := s.CampaignRepo.Create(c, recipientIDs); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns a page of the user's campaigns with recipient stats.
func (s *CampaignService) List(user *model.User, p repository.CampaignListParams) ([]model.CampaignWithStats, int, repository.CampaignListParams, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 50 {
		p.Limit = 50
	}

	campaigns, total, err := s.CampaignRepo.List(user.GoogleID, p)
	return campaigns, total, p, err
}

func (s *CampaignService) Count(user *model.User) (int, error) {
	return s.CampaignRepo.Count(user.GoogleID)
}

// RenderPreview personalizes the campaign template for one contact.
func (s *CampaignService) RenderPreview(user *model.User, campaignID, contactID int) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID, user.GoogleID)
	if err != nil {
		return "", err
	}

	contacts, err := s.ContactRepo.GetByIDs(user.GoogleID, []int{contactID})
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return "", fmt.Errorf("contact not found")
	}
	contact := contacts[0]

	return RenderTemplate(campaign.MessageTemplate, map[string]string{
		"name":  contact.Name,
		"phone": contact.PhoneNumber,
	}), nil
}

// EnqueueSend publishes a dispatch job for the campaign after checking it
// exists and can be sent in its current status.
func (s *CampaignService) EnqueueSend(user *model.User, campaignID int, providerName string) (*SendJob, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID, user.GoogleID)
	if err != nil {
		return nil, err
	}

	switch campaign.Status {
	case model.CampaignStatusDraft, model.CampaignStatusScheduled, model.CampaignStatusSending:
	default:
		return nil, fmt.Errorf("campaign cannot be sent in status: %s", campaign.Status)
	}

	job := &SendJob{
		JobID:        uuid.NewString(),
		CampaignID:   campaignID,
		UserGoogleID: user.GoogleID,
		Provider:     providerName,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	if err := s.Queue.Publish(CampaignSendTopic, payload); err != nil {
		return nil, fmt.Errorf("failed to enqueue campaign send: %w", err)
	}

	s.Logger.Info("campaign send enqueued",
		zap.String("job_id", job.JobID),
		zap.Int("campaign_id", campaignID),
		zap.String("provider", providerName),
	)
	return job, nil
}

// ProcessSendJob performs a queued campaign dispatch: it resolves the
// campaign's recipients and hands them to the message service, then marks
// the campaign completed.
func (s *CampaignService) ProcessSendJob(ctx context.Context, job SendJob) error {
	user, err := s.UserRepo.GetByGoogleID(job.UserGoogleID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found for job %s", job.UserGoogleID, job.JobID)
	}

	campaign, err := s.CampaignRepo.GetByID(job.CampaignID, job.UserGoogleID)
	if err != nil {
		return err
	}

	contactIDs, err := s.CampaignRepo.RecipientContactIDs(job.CampaignID)
	if err != nil {
		return err
	}
	if len(contactIDs) == 0 {
		return fmt.Errorf("campaign %d has no recipients", job.CampaignID)
	}

	outcome, err := s.Messages.SendToContacts(ctx, user, job.Provider, campaign.MessageTemplate, contactIDs, &job.CampaignID)
	if err != nil {
		return err
	}

	for _, res := range outcome.Results {
		status := model.MessageStatusSent
		if !res.Success {
			status = model.MessageStatusFailed
		}
		if err := s.CampaignRepo.UpdateRecipientStatus(job.CampaignID, res.ContactID, status); err != nil {
			s.Logger.Error("failed to update recipient status",
				zap.Int("campaign_id", job.CampaignID),
				zap.Int("contact_id", res.ContactID),
				zap.Error(err),
			)
		}
	}

	if err := s.CampaignRepo.UpdateStatus(job.CampaignID, model.CampaignStatusCompleted); err != nil {
		return err
	}

	s.Logger.Info("campaign send processed",
		zap.String("job_id", job.JobID),
		zap.Int("campaign_id", job.CampaignID),
		zap.Int("sent", outcome.Summary.Sent),
		zap.Int("failed", outcome.Summary.Failed),
	)
	return nil
}

// StartCampaignSendSubscriber wires ProcessSendJob to the campaign send
// topic. Used by the worker binary, and by the server when running with
// the in-memory queue.
func StartCampaignSendSubscriber(q queue.Queue, campaigns *CampaignService, logger *zap.Logger) error {
	return q.Subscribe(CampaignSendTopic, func(payload []byte) error {
		var job SendJob
		if err := json.Unmarshal(payload, &job); err != nil {
			logger.Error("invalid campaign send job", zap.Error(err))
			return nil // malformed payloads are not retryable
		}
		return campaigns.ProcessSendJob(context.Background(), job)
	})
}
