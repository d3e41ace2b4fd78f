package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/google"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"go.uber.org/zap"
)

// existenceChunkSize bounds the IN-clause of the import's duplicate check.
const existenceChunkSize = 100

type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// TokenRefresher exchanges a stored refresh token for an access token.
type TokenRefresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// ConnectionsLister pulls the user's Google contacts.
type ConnectionsLister interface {
	ListConnections(ctx context.Context, accessToken string) ([]google.PersonContact, error)
}

type ContactService struct {
	ContactRepo repository.ContactRepositoryInterface
	OAuth       TokenRefresher
	People      ConnectionsLister
	Logger      *zap.Logger
}

// Create validates and stores a manually-entered contact. A duplicate
// phone number for the same user is rejected.
func (s *ContactService) Create(user *model.User, name, phoneNumber, email string) (*model.Contact, error) {
	if phoneNumber == "" {
		return nil, &ErrInvalidMessage{Reason: "Phone number is required"}
	}
	if !strings.ContainsFunc(phoneNumber, unicode.IsDigit) {
		return nil, &ErrInvalidMessage{Reason: "Invalid phone number format"}
	}

	existing, err := s.ContactRepo.FindByPhone(user.GoogleID, phoneNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &errs.ErrDuplicateContact{ContactID: existing.ID}
	}

	contact := &model.Contact{
		UserGoogleID: user.GoogleID,
		Name:         name,
		PhoneNumber:  phoneNumber,
		Email:        email,
	}
	if err := s.ContactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns a page of the user's contacts with clamped pagination.
func (s *ContactService) List(user *model.User, p repository.ContactListParams) ([]model.Contact, int, repository.ContactListParams, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}

	contacts, total, err := s.ContactRepo.List(user.GoogleID, p)
	return contacts, total, p, err
}

func (s *ContactService) UpdateTelegram(user *model.User, contactID int, telegramID, telegramUsername, preferredProvider string) error {
	return s.ContactRepo.UpdateTelegram(user.GoogleID, contactID, telegramID, telegramUsername, preferredProvider)
}

// ImportFromGoogle refreshes an access token from the user's stored
// refresh token, pulls every connection from the People API, and upserts
// contacts that carry a phone number. Existence checks run in chunks so
// the importer does one query per hundred contacts instead of one per
// contact.
func (s *ContactService) ImportFromGoogle(ctx context.Context, user *model.User) (*ImportResult, error) {
	if user.GoogleRefreshToken == "" {
		return nil, fmt.Errorf("no refresh token available; please re-authenticate with Google")
	}

	accessToken, err := s.OAuth.RefreshAccessToken(ctx, user.GoogleRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	people, err := s.People.ListConnections(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Total: len(people)}

	// Only phone-bearing contacts are importable; the rest cannot be
	// messaged on any provider.
	importable := make([]google.PersonContact, 0, len(people))
	for _, p := range people {
		if p.PhoneNumber != "" {
			importable = append(importable, p)
		}
	}

	for start := 0; start < len(importable); start += existenceChunkSize {
		end := min(start+existenceChunkSize, len(importable))
		chunk := importable[start:end]

		googleIDs := make([]string, len(chunk))
		for i, p := range chunk {
			googleIDs[i] = p.GoogleContactID
		}

		present, err := s.ContactRepo.GoogleIDsPresent(user.GoogleID, googleIDs)
		if err != nil {
			return nil, err
		}

		for _, p := range chunk {
			if id, ok := present[p.GoogleContactID]; ok {
				if err := s.ContactRepo.UpdateFromGoogle(id, p.Name, p.PhoneNumber, p.Email); err != nil {
					return nil, err
				}
				result.Updated++
			} else {
				if err := s.ContactRepo.InsertFromGoogle(user.GoogleID, p.Name, p.PhoneNumber, p.Email, p.GoogleContactID); err != nil {
					return nil, err
				}
				result.Imported++
			}
		}
	}

	s.Logger.Info("google contacts import finished",
		zap.String("user", user.GoogleID),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("total", result.Total),
	)
	return result, nil
}
