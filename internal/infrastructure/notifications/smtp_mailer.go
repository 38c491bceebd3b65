package notifications

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPMailer sends plain text mail through an authenticated SMTP relay
type SMTPMailer struct {
	from string
	send func(msg *mail.Msg) error
}

// NewSMTPMailer returns nil when host is empty so callers fall back to logging
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	if host == "" {
		return nil, nil
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{from: from, send: func(msg *mail.Msg) error { return client.DialAndSend(msg) }}, nil
}

// Send implements EmailSender
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	return m.send(msg)
}
