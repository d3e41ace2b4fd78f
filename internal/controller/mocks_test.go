package controller

import (
	"time"

	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/repository"
)

type stubContactRepo struct {
	contacts []model.Contact
}

func (s *stubContactRepo) Create(c *model.Contact) error {
	c.ID = 1
	return nil
}

func (s *stubContactRepo) GetByIDs(userGoogleID string, ids []int) ([]model.Contact, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Contact
	for _, c := range s.contacts {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubContactRepo) FindByPhone(userGoogleID, phone string) (*model.Contact, error) {
	for i, c := range s.contacts {
		if c.PhoneNumber == phone {
			return &s.contacts[i], nil
		}
	}
	return nil, nil
}

func (s *stubContactRepo) List(userGoogleID string, p repository.ContactListParams) ([]model.Contact, int, error) {
	return s.contacts, len(s.contacts), nil
}

func (s *stubContactRepo) Count(userGoogleID string) (int, error) {
	return len(s.contacts), nil
}

func (s *stubContactRepo) UpdateTelegram(userGoogleID string, contactID int, telegramID, telegramUsername, preferredProvider string) error {
	return nil
}

func (s *stubContactRepo) GoogleIDsPresent(userGoogleID string, googleContactIDs []string) (map[string]int, error) {
	return map[string]int{}, nil
}

func (s *stubContactRepo) UpdateFromGoogle(id int, name, phone, email string) error { return nil }

func (s *stubContactRepo) InsertFromGoogle(userGoogleID, name, phone, email, googleContactID string) error {
	return nil
}

type stubCampaignRepo struct {
	campaign   *model.Campaign
	getErr     error
	recipients []int
}

func (s *stubCampaignRepo) Create(c *model.Campaign, recipientIDs []int) error {
	c.ID = 1
	s.recipients = recipientIDs
	return nil
}

func (s *stubCampaignRepo) GetByID(id int, userGoogleID string) (*model.Campaign, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.campaign, nil
}

func (s *stubCampaignRepo) List(userGoogleID string, p repository.CampaignListParams) ([]model.CampaignWithStats, int, error) {
	return nil, 0, nil
}

func (s *stubCampaignRepo) Count(userGoogleID string) (int, error) { return 0, nil }

func (s *stubCampaignRepo) UpdateStatus(campaignID int, status string) error { return nil }

func (s *stubCampaignRepo) RecipientContactIDs(campaignID int) ([]int, error) {
	return s.recipients, nil
}

func (s *stubCampaignRepo) UpdateRecipientStatus(campaignID, contactID int, status string) error {
	return nil
}

type stubLogRepo struct {
	entries []*model.MessageLog
}

func (s *stubLogRepo) Insert(l *model.MessageLog) error {
	s.entries = append(s.entries, l)
	return nil
}

func (s *stubLogRepo) List(userGoogleID string, p repository.MessageLogListParams) ([]model.MessageLogDetail, int, error) {
	return []model.MessageLogDetail{}, 0, nil
}

func (s *stubLogRepo) Stats(userGoogleID string, startDate, endDate *time.Time) (*model.MessageStats, error) {
	return &model.MessageStats{}, nil
}

func (s *stubLogRepo) Count(userGoogleID string) (int, error) {
	return len(s.entries), nil
}

type stubUserRepo struct {
	user *model.User
}

func (s *stubUserRepo) Upsert(u *model.User) error { return nil }

func (s *stubUserRepo) GetByGoogleID(googleID string) (*model.User, error) {
	return s.user, nil
}
