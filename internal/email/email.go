// Package email composes and sends the outbound invoice email over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/logger"
)

// ErrTransport wraps SMTP failures
var ErrTransport = errors.New("failed to send email")

// OutboundEmail is a fully composed message, ready for a transport
type OutboundEmail struct {
	From        domain.EmailAccount
	ReplyTo     *domain.EmailAccount
	To          []domain.EmailAccount
	CC          []domain.EmailAccount
	BCC         []domain.EmailAccount
	Subject     string
	Body        string
	Attachments []string
}

// Credentials authenticates against the SMTP server
type Credentials struct {
	Server      domain.SMTPServer
	Username    string
	AppPassword crypto.SecretString
}

// Compose expands the stored template for a concrete invoice and attaches
// the rendered PDF.
func Compose(settings domain.EmailSettings, number domain.InvoiceNumber, period domain.Period, pdfPath string) OutboundEmail {
	subject, body := settings.Template.Expand(number, period)
	return OutboundEmail{
		From:        settings.Sender,
		ReplyTo:     settings.ReplyTo,
		To:          settings.Recipients,
		CC:          settings.CC,
		BCC:         settings.BCC,
		Subject:     subject,
		Body:        body,
		Attachments: []string{pdfPath},
	}
}

// EmailTransport is the sending capability the core consumes
type EmailTransport interface {
	Send(ctx context.Context, email OutboundEmail, creds Credentials) error
}

// SMTPTransport sends over SMTP with STARTTLS and app-password auth
type SMTPTransport struct {
	log zerolog.Logger
}

func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{log: logger.WithComponent("email")}
}

func (t *SMTPTransport) Send(ctx context.Context, email OutboundEmail, creds Credentials) error {
	msg, err := buildMessage(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(creds.Server.Host,
		mail.WithPort(creds.Server.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Username),
		mail.WithPassword(creds.AppPassword.Expose()),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		// Some servers answer the post-DATA phase with a nonstandard
		// response even though the message was accepted.
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && sendErr.Reason == mail.ErrSMTPDataClose {
			t.log.Warn().Err(err).Msg("server complained after accepting message, treating as sent")
			return nil
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

func buildMessage(email OutboundEmail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(email.From.Name, email.From.Address); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if email.ReplyTo != nil {
		if err := msg.ReplyTo(email.ReplyTo.Address); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}
	for _, to := range email.To {
		if err := msg.AddToFormat(to.Name, to.Address); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}
	for _, cc := range email.CC {
		if err := msg.AddCcFormat(cc.Name, cc.Address); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}
	for _, bcc := range email.BCC {
		if err := msg.AddBccFormat(bcc.Name, bcc.Address); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)
	for _, path := range email.Attachments {
		msg.AttachFile(path)
	}
	return msg, nil
}
