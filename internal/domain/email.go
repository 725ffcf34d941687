package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/klirr/klirr/internal/crypto"
)

// SMTPServer is the outgoing mail server
type SMTPServer struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmailAccount is a display name plus address
type EmailAccount struct {
	Name    string `yaml:"name,omitempty"`
	Address string `yaml:"address"`
}

func (a EmailAccount) Validate() error {
	if _, err := mail.ParseAddress(a.Address); err != nil {
		return fmt.Errorf("invalid email address %q: %w", a.Address, err)
	}
	return nil
}

// EmailTemplate holds subject and body with {number} and {period}
// placeholders.
type EmailTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Expand fills the placeholders for a concrete invoice
func (t EmailTemplate) Expand(number InvoiceNumber, period Period) (subject, body string) {
	replacer := strings.NewReplacer(
		"{number}", fmt.Sprintf("%d", number),
		"{period}", period.String(),
	)
	return replacer.Replace(t.Subject), replacer.Replace(t.Body)
}

// EmailSettings is the at-rest form: the SMTP app-password is sealed under
// a key derived from the user passphrase and the stored salt.
type EmailSettings struct {
	Salt              crypto.Salt      `yaml:"salt"`
	SealedAppPassword crypto.SealedBox `yaml:"sealed_app_password"`
	SMTPServer        SMTPServer       `yaml:"smtp_server"`
	Sender            EmailAccount     `yaml:"sender"`
	ReplyTo           *EmailAccount    `yaml:"reply_to,omitempty"`
	Recipients        []EmailAccount   `yaml:"recipients"`
	CC                []EmailAccount   `yaml:"cc,omitempty"`
	BCC               []EmailAccount   `yaml:"bcc,omitempty"`
	Template          EmailTemplate    `yaml:"template"`
}

func (s EmailSettings) Validate() error {
	if s.SMTPServer.Host == "" {
		return errors.New("smtp host is required")
	}
	if err := s.Sender.Validate(); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	if len(s.Recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	for _, r := range s.Recipients {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("recipient: %w", err)
		}
	}
	if len(s.SealedAppPassword) == 0 {
		return errors.New("sealed app password is missing")
	}
	return nil
}

// Unlock decrypts the app password with the given passphrase. The derived
// key is zeroized before returning.
func (s EmailSettings) Unlock(passphrase crypto.SecretString) (UnlockedEmailSettings, error) {
	key := crypto.DeriveKey(passphrase, s.Salt)
	defer key.Zeroize()
	appPassword, err := crypto.Open(s.SealedAppPassword, key)
	if err != nil {
		return UnlockedEmailSettings{}, err
	}
	return UnlockedEmailSettings{
		Settings:    s,
		AppPassword: appPassword,
	}, nil
}

// UnlockedEmailSettings holds the in-memory plaintext app password for the
// duration of one command.
type UnlockedEmailSettings struct {
	Settings    EmailSettings
	AppPassword crypto.SecretString
}

// Close zeroizes the plaintext password
func (u *UnlockedEmailSettings) Close() {
	u.AppPassword.Zeroize()
}
