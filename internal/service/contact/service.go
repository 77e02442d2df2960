package contact

import (
	"context"
	"fmt"
	"log"

	"github.com/springlegal/website/backend/internal/events"
	"github.com/springlegal/website/backend/internal/model/contact"
)

// Secrets is the captcha side of a visitor session.
type Secrets interface {
	Secret(ctx context.Context) (string, bool, error)
	ClearSecret(ctx context.Context) error
}

// Notifier is best-effort by contract: it has no error to return.
type Notifier interface {
	Dispatch(ctx context.Context, sub contact.Submission)
}

// Options wires optional collaborators into the Service.
type Options struct {
	Notifier  Notifier
	Publisher events.Publisher

	// SingleUseCaptcha clears the session answer after the first accepted
	// submission. When false a solved captcha stays valid until the session expires.
	SingleUseCaptcha bool
}

// Service runs the contact-form pipeline: validate, notify, store.
type Service struct {
	store     contact.Store
	notifier  Notifier
	publisher events.Publisher
	singleUse bool
}

// NewService builds a Service around the authoritative store.
func NewService(store contact.Store, opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &Service{
		store:     store,
		notifier:  opts.Notifier,
		publisher: publisher,
		singleUse: opts.SingleUseCaptcha,
	}
}

// Submit validates in against the session's captcha answer, notifies the
// operator and stores the record. Only the store decides success; notification
// runs first and is not rolled back when the store fails. Side effects run on a
// context detached from the caller's cancellation.
func (s *Service) Submit(ctx context.Context, in contact.Input, secrets Secrets) (contact.Submission, error) {
	if err := checkPresence(in); err != nil {
		return contact.Submission{}, err
	}

	secret, ok, err := secrets.Secret(ctx)
	if err != nil {
		return contact.Submission{}, fmt.Errorf("%w: %v", ErrSessionFailure, err)
	}

	sub, err := Validate(in, secret, ok)
	if err != nil {
		return contact.Submission{}, err
	}

	if s.singleUse {
		if err := secrets.ClearSecret(ctx); err != nil {
			return contact.Submission{}, fmt.Errorf("%w: %v", ErrSessionFailure, err)
		}
	}

	ctx = context.WithoutCancel(ctx)

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, sub)
	}

	stored, err := s.store.Insert(ctx, sub)
	if err != nil {
		return contact.Submission{}, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if err := s.publisher.Publish(ctx, events.TopicContactSubmitted, events.ContactSubmitted{Submission: stored}); err != nil {
		log.Printf("[contact] failed to publish submission %d: %v", stored.ID, err)
	}

	return stored, nil
}
