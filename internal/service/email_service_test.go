package service

import (
	"context"
	"strings"
	"testing"

	"github.com/klirr/klirr/internal/crypto"
	"github.com/klirr/klirr/internal/domain"
	"github.com/klirr/klirr/internal/storage"
)

func emailSetup() EmailSetupInput {
	return EmailSetupInput{
		SMTPServer: domain.SMTPServer{Host: "smtp.example.com", Port: 587},
		Sender:     domain.EmailAccount{Name: "Jane", Address: "jane@example.com"},
		Recipients: []domain.EmailAccount{{Address: "billing@example.com"}},
		Template: domain.EmailTemplate{
			Subject: "Invoice {number}",
			Body:    "Invoice for {period} attached.",
		},
		AppPassword: crypto.NewSecretString("app-password"),
		Passphrase:  crypto.NewSecretString("open sesame"),
	}
}

func TestEmailInitThenValidate(t *testing.T) {
	store := newFakeStore()
	svc := NewEmailService(store, &recordingTransport{})

	if err := svc.Init(emailSetup()); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(storage.KeyEmailSettings) {
		t.Fatal("settings not persisted")
	}
	if err := svc.Validate(crypto.NewSecretString("open sesame")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Validate(crypto.NewSecretString("wrong words")); err == nil {
		t.Fatal("wrong passphrase accepted")
	}
}

func TestEmailInitRejectsBadAddress(t *testing.T) {
	input := emailSetup()
	input.Sender.Address = "not-an-address"
	if err := NewEmailService(newFakeStore(), &recordingTransport{}).Init(input); err == nil {
		t.Fatal("bad sender address accepted")
	}
}

func TestEmailSettingsFileNeverHoldsPlaintext(t *testing.T) {
	store := newFakeStore()
	if err := NewEmailService(store, &recordingTransport{}).Init(emailSetup()); err != nil {
		t.Fatal(err)
	}
	raw := string(store.files[storage.KeyEmailSettings])
	if strings.Contains(raw, "app-password") {
		t.Fatalf("plaintext app password on disk:\n%s", raw)
	}
	if strings.Contains(raw, "open sesame") {
		t.Fatalf("passphrase on disk:\n%s", raw)
	}
}

func TestEmailSendTest(t *testing.T) {
	store := newFakeStore()
	transport := &recordingTransport{}
	svc := NewEmailService(store, transport)

	if err := svc.Init(emailSetup()); err != nil {
		t.Fatal(err)
	}
	if err := svc.SendTest(context.Background(), crypto.NewSecretString("open sesame")); err != nil {
		t.Fatal(err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(transport.sent))
	}
	if transport.creds[0].AppPassword.Expose() != "app-password" {
		t.Error("unsealed password does not match")
	}
	if len(transport.sent[0].Attachments) != 0 {
		t.Error("test email should not attach anything")
	}
}
