package controller

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/queue"
	"github.com/telecasthq/telecast-backend/internal/service"
	"go.uber.org/zap"
)

func newCampaignController(repo *stubCampaignRepo, q queue.Queue) *CampaignController {
	svc := &service.CampaignService{
		CampaignRepo: repo,
		ContactRepo:  &stubContactRepo{contacts: []model.Contact{{ID: 3, Name: "Alice", PhoneNumber: "+254700000001"}}},
		Queue:        q,
		Logger:       zap.NewNop(),
	}
	return &CampaignController{CampaignService: svc, Logger: zap.NewNop()}
}

func TestCreateCampaign(t *testing.T) {
	user := &model.User{GoogleID: "g-1"}
	repo := &stubCampaignRepo{}
	ctrl := newCampaignController(repo, nil)

	rec := serve(t, user, ctrl.Create, postJSON("/api/campaigns", map[string]any{
		"name":             "Promo",
		"message_template": "Hi {name}!",
		"recipient_ids":    []int{3},
	}))

	require.Equal(t, 201, rec.Code)

	var created model.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.CampaignStatusDraft, created.Status)
	assert.Equal(t, []int{3}, repo.recipients)
}

func TestCreateCampaignRejectsPastSchedule(t *testing.T) {
	user := &model.User{GoogleID: "g-1"}
	ctrl := newCampaignController(&stubCampaignRepo{}, nil)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	rec := serve(t, user, ctrl.Create, postJSON("/api/campaigns", map[string]any{
		"name":             "Promo",
		"message_template": "Hi {name}!",
		"scheduled_at":     past,
	}))

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "future date")
}

// sendViaRouter dispatches through a chi router so URL params resolve.
func sendViaRouter(t *testing.T, user *model.User, ctrl *CampaignController, path string, body map[string]any) *jsonResponse {
	t.Helper()

	r := chi.NewRouter()
	r.Post("/api/campaigns/{id}/send", ctrl.Send)
	r.Post("/api/campaigns/{id}/preview", ctrl.Preview)

	rec := serve(t, user, r.ServeHTTP, postJSON(path, body))

	resp := &jsonResponse{code: rec.Code, body: map[string]any{}}
	json.Unmarshal(rec.Body.Bytes(), &resp.body)
	return resp
}

type jsonResponse struct {
	code int
	body map[string]any
}

func TestSendCampaignQueuesJob(t *testing.T) {
	user := &model.User{GoogleID: "g-1"}
	repo := &stubCampaignRepo{campaign: &model.Campaign{ID: 5, Status: model.CampaignStatusDraft}}

	q := queue.NewInMemoryQueue(zap.NewNop())
	delivered := make(chan []byte, 1)
	require.NoError(t, q.Subscribe(service.CampaignSendTopic, func(payload []byte) error {
		delivered <- payload
		return nil
	}))

	ctrl := newCampaignController(repo, q)
	resp := sendViaRouter(t, user, ctrl, "/api/campaigns/5/send", map[string]any{"provider": "telegram"})

	require.Equal(t, 202, resp.code)
	assert.Equal(t, "queued", resp.body["status"])
	assert.NotEmpty(t, resp.body["job_id"])

	select {
	case payload := <-delivered:
		var job service.SendJob
		require.NoError(t, json.Unmarshal(payload, &job))
		assert.Equal(t, 5, job.CampaignID)
		assert.Equal(t, "telegram", job.Provider)
	case <-time.After(time.Second):
		t.Fatal("job was not queued")
	}
}

func TestSendCampaignNotFound(t *testing.T) {
	user := &model.User{GoogleID: "g-1"}
	repo := &stubCampaignRepo{getErr: errs.NewCampaignNotFound(99)}
	ctrl := newCampaignController(repo, queue.NewInMemoryQueue(zap.NewNop()))

	resp := sendViaRouter(t, user, ctrl, "/api/campaigns/99/send", map[string]any{"provider": "whatsapp"})
	assert.Equal(t, 404, resp.code)
}

func TestPreviewRendersTemplate(t *testing.T) {
	user := &model.User{GoogleID: "g-1"}
	repo := &stubCampaignRepo{campaign: &model.Campaign{ID: 5, MessageTemplate: "Hi {name}!"}}
	ctrl := newCampaignController(repo, nil)

	resp := sendViaRouter(t, user, ctrl, "/api/campaigns/5/preview", map[string]any{"contact_id": 3})

	require.Equal(t, 200, resp.code)
	assert.Equal(t, "Hi Alice!", resp.body["rendered_message"])
}
