package events

import (
	"context"

	"github.com/springlegal/website/backend/internal/model/contact"
)

// TopicContactSubmitted is published after a submission is stored.
const TopicContactSubmitted = "site.contact.submitted"

type ContactSubmitted struct {
	Submission contact.Submission `json:"submission"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
