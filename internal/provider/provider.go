package provider

import (
	"context"

	"github.com/telecasthq/telecast-backend/internal/model"
)

// Provider tags recognized by the router.
const (
	WhatsApp = "whatsapp"
	Telegram = "telegram"
)

// SendResult is the per-recipient outcome of a dispatch. Exactly one
// result exists for every input contact; a failure for one recipient never
// suppresses the results of its siblings.
type SendResult struct {
	ContactID   int    `json:"contactId"`
	ContactName string `json:"contactName"`
	Success     bool   `json:"success"`
	MessageID   string `json:"messageId,omitempty"`
	Error       string `json:"error,omitempty"`
	Provider    string `json:"provider"`
}

// InvalidContact describes a recipient that cannot be addressed on the
// selected provider.
type InvalidContact struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Sender is the capability one messaging transport exposes. Adding a
// provider means adding one implementation and registering it with the
// router.
//
// Send returns an error only for fail-fast conditions (missing
// credentials); transport-level trouble for individual recipients is
// reported through failed SendResults, never as an error.
type Sender interface {
	Name() string

	// CheckRecipient reports why a contact cannot be reached on this
	// provider, or "" if it can.
	CheckRecipient(c model.Contact) string

	Send(ctx context.Context, contacts []model.Contact, message string) ([]SendResult, error)
}
