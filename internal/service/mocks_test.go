package service

import (
	"time"

	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/repository"
)

type mockContactRepo struct {
	contacts []model.Contact

	createErr     error
	created       []*model.Contact
	findByPhone   *model.Contact
	listTotal     int
	listParams    repository.ContactListParams
	presentByID   map[string]int
	presentCalls  [][]string
	updatedFromG  []int
	insertedFromG []string
	telegramCalls int
}

func (m *mockContactRepo) Create(c *model.Contact) error {
	if m.createErr != nil {
		return m.createErr
	}
	c.ID = len(m.created) + 1
	m.created = append(m.created, c)
	return nil
}

func (m *mockContactRepo) GetByIDs(userGoogleID string, ids []int) ([]model.Contact, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Contact
	for _, c := range m.contacts {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContactRepo) FindByPhone(userGoogleID, phone string) (*model.Contact, error) {
	return m.findByPhone, nil
}

func (m *mockContactRepo) List(userGoogleID string, p repository.ContactListParams) ([]model.Contact, int, error) {
	m.listParams = p
	return m.contacts, m.listTotal, nil
}

func (m *mockContactRepo) Count(userGoogleID string) (int, error) {
	return len(m.contacts), nil
}

func (m *mockContactRepo) UpdateTelegram(userGoogleID string, contactID int, telegramID, telegramUsername, preferredProvider string) error {
	m.telegramCalls++
	return nil
}

func (m *mockContactRepo) GoogleIDsPresent(userGoogleID string, googleContactIDs []string) (map[string]int, error) {
	m.presentCalls = append(m.presentCalls, googleContactIDs)
	out := map[string]int{}
	for _, gid := range googleContactIDs {
		if id, ok := m.presentByID[gid]; ok {
			out[gid] = id
		}
	}
	return out, nil
}

func (m *mockContactRepo) UpdateFromGoogle(id int, name, phone, email string) error {
	m.updatedFromG = append(m.updatedFromG, id)
	return nil
}

func (m *mockContactRepo) InsertFromGoogle(userGoogleID, name, phone, email, googleContactID string) error {
	m.insertedFromG = append(m.insertedFromG, googleContactID)
	return nil
}

type mockCampaignRepo struct {
	campaign   *model.Campaign
	getErr     error
	created    []*model.Campaign
	recipients []int

	statusUpdates    []string
	recipientUpdates map[int]string
}

func (m *mockCampaignRepo) Create(c *model.Campaign, recipientIDs []int) error {
	c.ID = len(m.created) + 1
	m.created = append(m.created, c)
	m.recipients = recipientIDs
	return nil
}

func (m *mockCampaignRepo) GetByID(id int, userGoogleID string) (*model.Campaign, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.campaign, nil
}

func (m *mockCampaignRepo) List(userGoogleID string, p repository.CampaignListParams) ([]model.CampaignWithStats, int, error) {
	return nil, 0, nil
}

func (m *mockCampaignRepo) Count(userGoogleID string) (int, error) {
	return len(m.created), nil
}

func (m *mockCampaignRepo) UpdateStatus(campaignID int, status string) error {
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

func (m *mockCampaignRepo) RecipientContactIDs(campaignID int) ([]int, error) {
	return m.recipients, nil
}

func (m *mockCampaignRepo) UpdateRecipientStatus(campaignID, contactID int, status string) error {
	if m.recipientUpdates == nil {
		m.recipientUpdates = map[int]string{}
	}
	m.recipientUpdates[contactID] = status
	return nil
}

type mockLogRepo struct {
	entries   []*model.MessageLog
	insertErr error
}

func (m *mockLogRepo) Insert(l *model.MessageLog) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	l.ID = len(m.entries) + 1
	l.CreatedAt = time.Now()
	m.entries = append(m.entries, l)
	return nil
}

func (m *mockLogRepo) List(userGoogleID string, p repository.MessageLogListParams) ([]model.MessageLogDetail, int, error) {
	return nil, 0, nil
}

func (m *mockLogRepo) Stats(userGoogleID string, startDate, endDate *time.Time) (*model.MessageStats, error) {
	return &model.MessageStats{}, nil
}

func (m *mockLogRepo) Count(userGoogleID string) (int, error) {
	return len(m.entries), nil
}

type mockUserRepo struct {
	user *model.User
}

func (m *mockUserRepo) Upsert(u *model.User) error { return nil }

func (m *mockUserRepo) GetByGoogleID(googleID string) (*model.User, error) {
	return m.user, nil
}
