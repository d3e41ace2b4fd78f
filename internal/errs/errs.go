package errs

import (
	"errors"
	"fmt"
)

// Fail-fast dispatch errors. These propagate out of a dispatch call as
// errors; per-recipient failures never do, they become failed SendResults.
var (
	ErrUnknownProvider       = errors.New("unknown provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrContactNotFound is returned when a contact lookup comes back empty.
type ErrContactNotFound struct {
	ContactID int
}

func (e *ErrContactNotFound) Error() string {
	return fmt.Sprintf("contact with ID %d not found", e.ContactID)
}

func NewContactNotFound(id int) error {
	return &ErrContactNotFound{ContactID: id}
}

// ErrDuplicateContact is returned when a phone number already exists for
// the user.
type ErrDuplicateContact struct {
	ContactID int
}

func (e *ErrDuplicateContact) Error() string {
	return fmt.Sprintf("a contact with this phone number already exists (id %d)", e.ContactID)
}
