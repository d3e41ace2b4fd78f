package provider

import (
	"context"
	"fmt"

	"github.com/telecasthq/telecast-backend/internal/errs"
	"github.com/telecasthq/telecast-backend/internal/model"
	"go.uber.org/zap"
)

// Router decouples the API layer from provider mechanics. It owns the
// fixed set of registered senders and presents uniform Validate/Dispatch
// entry points.
type Router struct {
	senders map[string]Sender
	logger  *zap.Logger
}

func NewRouter(logger *zap.Logger, senders ...Sender) *Router {
	m := make(map[string]Sender, len(senders))
	for _, s := range senders {
		m[s.Name()] = s
	}
	return &Router{senders: m, logger: logger}
}

// Providers returns the registered provider tags.
func (r *Router) Providers() []string {
	tags := make([]string, 0, len(r.senders))
	for tag := range r.senders {
		tags = append(tags, tag)
	}
	return tags
}

// Validate checks that every contact carries the fields the provider
// needs. It is side-effect free; the caller decides whether to block the
// dispatch on invalid recipients.
func (r *Router) Validate(provider string, contacts []model.Contact) (bool, []InvalidContact, error) {
	s, ok := r.senders[provider]
	if !ok {
		return false, nil, fmt.Errorf("%w: %q", errs.ErrUnknownProvider, provider)
	}

	var invalid []InvalidContact
	for _, c := range contacts {
		if reason := s.CheckRecipient(c); reason != "" {
			invalid = append(invalid, InvalidContact{ID: c.ID, Name: c.Name, Reason: reason})
		}
	}
	return len(invalid) == 0, invalid, nil
}

// Dispatch routes the message to the provider's sender. Unknown provider
// and missing credentials fail the whole call before any transport request
// goes out; everything past that point is per-recipient data.
func (r *Router) Dispatch(ctx context.Context, provider string, contacts []model.Contact, message string) ([]SendResult, error) {
	s, ok := r.senders[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownProvider, provider)
	}

	results, err := s.Send(ctx, contacts, message)
	if err != nil {
		return nil, err
	}

	r.logger.Info("dispatch finished",
		zap.String("provider", provider),
		zap.Int("recipients", len(contacts)),
	)
	return results, nil
}
