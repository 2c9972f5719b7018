package alert

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Emailer sends one plain-text message. Implementations are expected to
// block until the message is handed to the transport, returning any
// transport error to the caller.
type Emailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// SMTPEmailer delivers alerts over SMTP with STARTTLS and login auth.
type SMTPEmailer struct {
	client *mail.Client
	from   string
}

var _ Emailer = (*SMTPEmailer)(nil)

func NewSMTPEmailer(host string, port int, username string, password string, from string) (*SMTPEmailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPEmailer{
		client: client,
		from:   from,
	}, nil
}

func (e *SMTPEmailer) Send(ctx context.Context, to string, subject string, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return e.client.DialAndSendWithContext(ctx, msg)
}
