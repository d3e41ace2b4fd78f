package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/queue"
	"go.uber.org/zap"
)

func TestCreateCampaignValidation(t *testing.T) {
	svc := &CampaignService{CampaignRepo: &mockCampaignRepo{}, Logger: zap.NewNop()}
	user := testUser()

	_, err := svc.Create(user, "", "hi {name}", nil, nil)
	var invalid *ErrInvalidMessage
	require.ErrorAs(t, err, &invalid)

	_, err = svc.Create(user, "Promo", "", nil, nil)
	require.ErrorAs(t, err, &invalid)

	_, err = svc.Create(user, "Promo", strings.Repeat("a", MaxMessageLength+1), nil, nil)
	require.ErrorAs(t, err, &invalid)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err = svc.Create(user, "Promo", "hi {name}", nil, &past)
	require.ErrorAs(t, err, &invalid)
}

func TestCreateCampaignStatuses(t *testing.T) {
	repo := &mockCampaignRepo{}
	svc := &CampaignService{CampaignRepo: repo, Logger: zap.NewNop()}
	user := testUser()

	draft, err := svc.Create(user, "Promo", "hi {name}", []int{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusDraft, draft.Status)
	assert.Equal(t, []int{1, 2}, repo.recipients)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	scheduled, err := svc.Create(user, "Later", "hi {name}", nil, &future)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledAt)
}

func TestEnqueueSendPublishesJob(t *testing.T) {
	repo := &mockCampaignRepo{campaign: &model.Campaign{ID: 5, Status: model.CampaignStatusDraft}}
	q := queue.NewInMemoryQueue(zap.NewNop())

	var got SendJob
	done := make(chan struct{})
	require.NoError(t, q.Subscribe(CampaignSendTopic, func(payload []byte) error {
		require.NoError(t, json.Unmarshal(payload, &got))
		close(done)
		return nil
	}))

	svc := &CampaignService{CampaignRepo: repo, Queue: q, Logger: zap.NewNop()}
	job, err := svc.EnqueueSend(testUser(), 5, "telegram")
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobID)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not delivered")
	}
	assert.Equal(t, 5, got.CampaignID)
	assert.Equal(t, "telegram", got.Provider)
	assert.Equal(t, "g-1", got.UserGoogleID)
}

func TestEnqueueSendRejectsCompletedCampaign(t *testing.T) {
	repo := &mockCampaignRepo{campaign: &model.Campaign{ID: 5, Status: model.CampaignStatusCompleted}}
	svc := &CampaignService{CampaignRepo: repo, Queue: queue.NewInMemoryQueue(zap.NewNop()), Logger: zap.NewNop()}

	_, err := svc.EnqueueSend(testUser(), 5, "whatsapp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be sent")
}

func TestProcessSendJobDispatchesAndCompletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["to"] == "+254700000002" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"message": "invalid destination"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"messageId": "mid-1"})
	}))
	defer server.Close()

	contacts := []model.Contact{
		{ID: 1, Name: "Alice", PhoneNumber: "+254700000001"},
		{ID: 2, Name: "Bob", PhoneNumber: "+254700000002"},
	}
	contactRepo := &mockContactRepo{contacts: contacts}
	campaignRepo := &mockCampaignRepo{
		campaign:   &model.Campaign{ID: 7, Status: model.CampaignStatusDraft, MessageTemplate: "big news!"},
		recipients: []int{1, 2},
	}
	logRepo := &mockLogRepo{}

	messages := &MessageService{
		Router:       newWhatsAppRouter(server.URL),
		ContactRepo:  contactRepo,
		CampaignRepo: campaignRepo,
		LogRepo:      logRepo,
		Logger:       zap.NewNop(),
	}
	svc := &CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		UserRepo:     &mockUserRepo{user: testUser()},
		Messages:     messages,
		Logger:       zap.NewNop(),
	}

	err := svc.ProcessSendJob(context.Background(), SendJob{
		JobID:        "job-1",
		CampaignID:   7,
		UserGoogleID: "g-1",
		Provider:     "whatsapp",
	})
	require.NoError(t, err)

	assert.Equal(t, model.MessageStatusSent, campaignRepo.recipientUpdates[1])
	assert.Equal(t, model.MessageStatusFailed, campaignRepo.recipientUpdates[2])
	// Status moves through sending to completed.
	assert.Equal(t, []string{model.CampaignStatusSending, model.CampaignStatusCompleted}, campaignRepo.statusUpdates)
	assert.Len(t, logRepo.entries, 2)
}

func TestProcessSendJobNoRecipients(t *testing.T) {
	campaignRepo := &mockCampaignRepo{campaign: &model.Campaign{ID: 7, Status: model.CampaignStatusDraft}}
	svc := &CampaignService{
		CampaignRepo: campaignRepo,
		UserRepo:     &mockUserRepo{user: testUser()},
		Logger:       zap.NewNop(),
	}

	err := svc.ProcessSendJob(context.Background(), SendJob{CampaignID: 7, UserGoogleID: "g-1", Provider: "whatsapp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}

func TestRenderPreview(t *testing.T) {
	campaignRepo := &mockCampaignRepo{
		campaign: &model.Campaign{ID: 1, MessageTemplate: "Hi {name}, your number is {phone}."},
	}
	contactRepo := &mockContactRepo{contacts: []model.Contact{
		{ID: 3, Name: "Alice", PhoneNumber: "+254700000001"},
		{ID: 4, PhoneNumber: "+254700000002"},
	}}
	svc := &CampaignService{CampaignRepo: campaignRepo, ContactRepo: contactRepo, Logger: zap.NewNop()}
	user := testUser()

	rendered, err := svc.RenderPreview(user, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Hi Alice, your number is +254700000001.", rendered)

	// Missing name falls back to the neutral greeting.
	rendered, err = svc.RenderPreview(user, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "Hi there, your number is +254700000002.", rendered)
}
