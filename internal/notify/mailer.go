package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// ErrInvalidMessage is returned for messages without a recipient or subject.
var ErrInvalidMessage = errors.New("mail message requires a recipient and a subject")

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if m.To == "" || m.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Mailer sends a message. Implementations may block on network I/O and
// should honor ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer is a Mailer that writes each message to the context logger
// instead of delivering it. Recipient addresses are redacted.
type LogMailer struct {
	from string
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer sending as from.
func NewLogMailer(from string) *LogMailer {
	return &LogMailer{from: from}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("mail sent",
		slog.String("from", redact.String(m.from)),
		slog.String("to", redact.String(msg.To)),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)))
	return nil
}

// WelcomeMessage builds the message sent after registration.
func WelcomeMessage(to, name string) Message {
	greeting := "Welcome"
	if name != "" {
		greeting = "Welcome, " + name
	}
	return Message{
		To:      to,
		Subject: "Welcome to Tasks",
		Body:    greeting + ".\n\nYour account is ready. Ask an administrator for editor access to create tasks.\n",
	}
}
