package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/email"
	"github.com/klirr/klirr/internal/logger"
	"github.com/klirr/klirr/internal/storage"
)

// EmailSetupInput is everything `email init` collects before sealing
type EmailSetupInput struct {
	SMTPServer  domain.SMTPServer
	Sender      domain.EmailAccount
	ReplyTo     *domain.EmailAccount
	Recipients  []domain.EmailAccount
	CC          []domain.EmailAccount
	BCC         []domain.EmailAccount
	Template    domain.EmailTemplate
	AppPassword crypto.SecretString
	Passphrase  crypto.SecretString

	// StoreInKeyring saves the passphrase in the system keyring so later
	// runs do not prompt.
	StoreInKeyring bool
}

// EmailService manages the encrypted email settings
type EmailService interface {
	// Init seals the SMTP app-password under a fresh salt and stores the
	// settings.
	Init(input EmailSetupInput) error

	// Validate loads the settings, checks them, and verifies the
	// passphrase can open the sealed box.
	Validate(passphrase crypto.SecretString) error

	// SendTest sends a probe email through the configured server
	SendTest(ctx context.Context, passphrase crypto.SecretString) error
}

type emailService struct {
	store     storage.Store
	transport email.EmailTransport
	log       zerolog.Logger
}

func NewEmailService(store storage.Store, transport email.EmailTransport) EmailService {
	return &emailService{
		store:     store,
		transport: transport,
		log:       logger.WithComponent("email"),
	}
}

func (s *emailService) Init(input EmailSetupInput) error {
	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	key := crypto.DeriveKey(input.Passphrase, salt)
	defer key.Zeroize()
	sealed, err := crypto.Seal(input.AppPassword, key)
	if err != nil {
		return err
	}

	settings := domain.EmailSettings{
		Salt:              salt,
		SealedAppPassword: sealed,
		SMTPServer:        input.SMTPServer,
		Sender:            input.Sender,
		ReplyTo:           input.ReplyTo,
		Recipients:        input.Recipients,
		CC:                input.CC,
		BCC:               input.BCC,
		Template:          input.Template,
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(storage.KeyEmailSettings, settings); err != nil {
		return err
	}

	if input.StoreInKeyring {
		if err := crypto.StorePassphraseInKeyring(input.Passphrase); err != nil {
			s.log.Warn().Err(err).Msg("failed to store passphrase in keyring")
		}
	}
	s.log.Info().Str("host", input.SMTPServer.Host).Msg("email settings stored")
	return nil
}

func (s *emailService) load() (domain.EmailSettings, error) {
	var settings domain.EmailSettings
	if err := s.store.Load(storage.KeyEmailSettings, &settings); err != nil {
		return domain.EmailSettings{}, err
	}
	if err := settings.Validate(); err != nil {
		return domain.EmailSettings{}, err
	}
	return settings, nil
}

func (s *emailService) Validate(passphrase crypto.SecretString) error {
	settings, err := s.load()
	if err != nil {
		return err
	}
	unlocked, err := settings.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("settings stored but passphrase does not open them: %w", err)
	}
	unlocked.Close()
	return nil
}

func (s *emailService) SendTest(ctx context.Context, passphrase crypto.SecretString) error {
	settings, err := s.load()
	if err != nil {
		return err
	}
	unlocked, err := settings.Unlock(passphrase)
	if err != nil {
		return err
	}
	defer unlocked.Close()

	probe := email.OutboundEmail{
		From:    settings.Sender,
		ReplyTo: settings.ReplyTo,
		To:      settings.Recipients,
		Subject: "klirr test email",
		Body: fmt.Sprintf(
			"This is a test email from klirr, sent %s.\nYour SMTP settings work.",
			time.Now().Format(time.RFC1123)),
	}
	creds := email.Credentials{
		Server:      settings.SMTPServer,
		Username:    settings.Sender.Address,
		AppPassword: unlocked.AppPassword,
	}
	return s.transport.Send(ctx, probe, creds)
}
