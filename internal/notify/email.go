package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/events"
)

// Enqueuer hands an email to whatever delivers it, now or later.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg common.EmailMessage) error
}

// EmailNotifier turns domain events into customer and admin emails.
type EmailNotifier struct {
	Queue   Enqueuer
	AdminTo string
	Log     zerolog.Logger
}

// Notify implements events.Notifier.
func (n EmailNotifier) Notify(ctx context.Context, event events.Event) error {
	if n.Queue == nil {
		return nil
	}
	msgs, err := n.messagesFor(event)
	if err != nil {
		return fmt.Errorf("email notify %s: %w", event.Topic, err)
	}
	var joined error
	for _, msg := range msgs {
		if strings.TrimSpace(msg.To) == "" {
			continue
		}
		if err := n.Queue.Enqueue(ctx, msg); err != nil {
			joined = errors.Join(joined, fmt.Errorf("enqueue %s to %s: %w", msg.Tag, msg.To, err))
		}
	}
	return joined
}

func (n EmailNotifier) messagesFor(event events.Event) ([]common.EmailMessage, error) {
	switch event.Topic {
	case events.TopicOrderCreated:
		var p events.OrderCreated
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return n.render(event.Topic,
			mail{to: p.ContactEmail, subject: "Order " + p.OrderNumber + " received", tmpl: "order_created_customer", data: p},
			mail{to: n.AdminTo, subject: "New order " + p.OrderNumber, tmpl: "order_created_admin", data: p},
		)
	case events.TopicOrderStatusChanged:
		var p events.OrderStatusChanged
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return n.render(event.Topic,
			mail{to: p.ContactEmail, subject: fmt.Sprintf("Order %s is now %s", p.OrderNumber, statusLabel(p.To)), tmpl: "order_status_customer", data: p},
		)
	case events.TopicQuoteCreated:
		var p events.QuoteCreated
		if err := event.Decode(&p); err != nil {
			return nil, err
		}
		return n.render(event.Topic,
			mail{to: p.Email, subject: "We received your quote request " + p.Reference, tmpl: "quote_created_customer", data: p},
			mail{to: n.AdminTo, subject: "New quote request " + p.Reference, tmpl: "quote_created_admin", data: p},
		)
	default:
		return nil, nil
	}
}

type mail struct {
	to      string
	subject string
	tmpl    string
	data    any
}

func (n EmailNotifier) render(tag string, mails ...mail) ([]common.EmailMessage, error) {
	out := make([]common.EmailMessage, 0, len(mails))
	for _, m := range mails {
		if strings.TrimSpace(m.to) == "" {
			n.Log.Debug().Str("template", m.tmpl).Msg("email recipient missing; skipped")
			continue
		}
		body, err := renderHTML(m.tmpl, m.data)
		if err != nil {
			return nil, err
		}
		out = append(out, common.EmailMessage{To: m.to, Subject: m.subject, HTML: body, Tag: tag})
	}
	return out, nil
}

func statusLabel(status string) string {
	if status == "" {
		return status
	}
	lower := strings.ToLower(status)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
