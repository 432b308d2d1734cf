package mailer

import (
	"fmt"

	"go-contactform-backend/internal/domain"

	"github.com/gophish/gomail"
)

// Transport delivers a finalized contact message. Implementations own
// the delivery mechanics; callers only hand over the descriptor.
type Transport interface {
	Send(msg domain.MessageDescriptor) error
}

// SMTPTransport sends messages through an authenticated SMTP relay.
type SMTPTransport struct {
	dialer *gomail.Dialer
	// Envelope sender. The header From stays the submitter's identity
	// so replies go to the right place, but relays require a verified
	// sender address.
	fromEmail string
	host      string
	username  string
}

// Config holds SMTP relay settings for the transport.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

// NewSMTPTransport creates a transport for the given relay configuration.
func NewSMTPTransport(cfg Config) *SMTPTransport {
	return &SMTPTransport{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromEmail: cfg.FromEmail,
		host:      cfg.Host,
		username:  cfg.Username,
	}
}

// Send delivers the message, dialing the relay per call. Contact form
// volume is low enough that a persistent connection is not worth it.
func (t *SMTPTransport) Send(msg domain.MessageDescriptor) error {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("Sender", t.fromEmail)
	m.SetHeader("To", msg.Recipients...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the transport has valid SMTP configuration
func (t *SMTPTransport) IsConfigured() bool {
	return t.host != "" && t.username != "" && t.dialer != nil
}
