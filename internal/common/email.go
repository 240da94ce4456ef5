package common

import (
	"context"
	"sync"
)

// EmailMessage is a single outbound transactional email.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	// Tag groups messages for delivery metrics, e.g. "order.created".
	Tag string `json:"tag,omitempty"`
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// InMemoryEmail records messages instead of delivering them.
type InMemoryEmail struct {
	mu     sync.Mutex
	Outbox []EmailMessage
}

// Send records the email in memory.
func (m *InMemoryEmail) Send(_ context.Context, msg EmailMessage) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outbox = append(m.Outbox, msg)
	return nil
}

// Messages returns a snapshot of the recorded outbox.
func (m *InMemoryEmail) Messages() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailMessage, len(m.Outbox))
	copy(out, m.Outbox)
	return out
}

// NopEmailSender implements EmailSender without performing any action.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(context.Context, EmailMessage) error { return nil }
