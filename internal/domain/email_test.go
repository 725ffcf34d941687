package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/klirr/klirr/internal/crypto"
)

func TestEmailTemplateExpand(t *testing.T) {
	template := EmailTemplate{
		Subject: "Invoice {number}",
		Body:    "Invoice {number} for {period} attached.",
	}
	subject, body := template.Expand(137, mustParsePeriod(t, "2025-05"))
	if subject != "Invoice 137" {
		t.Errorf("subject = %q", subject)
	}
	if body != "Invoice 137 for 2025-05 attached." {
		t.Errorf("body = %q", body)
	}
}

func testEmailSettings(t *testing.T, passphrase crypto.SecretString, appPassword string) EmailSettings {
	t.Helper()
	salt, err := crypto.NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	key := crypto.DeriveKey(passphrase, salt)
	sealed, err := crypto.Seal(crypto.NewSecretString(appPassword), key)
	if err != nil {
		t.Fatal(err)
	}
	return EmailSettings{
		Salt:              salt,
		SealedAppPassword: sealed,
		SMTPServer:        SMTPServer{Host: "smtp.example.com", Port: 587},
		Sender:            EmailAccount{Name: "Jane", Address: "jane@example.com"},
		Recipients:        []EmailAccount{{Address: "billing@client.example"}},
		Template:          EmailTemplate{Subject: "Invoice {number}", Body: "See attached."},
	}
}

func TestEmailSettingsUnlock(t *testing.T) {
	passphrase := crypto.NewSecretString("hunter2")
	settings := testEmailSettings(t, passphrase, "app-password-123")
	if err := settings.Validate(); err != nil {
		t.Fatal(err)
	}
	unlocked, err := settings.Unlock(passphrase)
	if err != nil {
		t.Fatal(err)
	}
	defer unlocked.Close()
	if unlocked.AppPassword.Expose() != "app-password-123" {
		t.Errorf("unexpected app password")
	}
}

func TestEmailSettingsUnlockWrongPassphrase(t *testing.T) {
	settings := testEmailSettings(t, crypto.NewSecretString("hunter2"), "app-password-123")
	_, err := settings.Unlock(crypto.NewSecretString("wrong-passphrase"))
	if !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("want ErrDecryptionFailed, got %v", err)
	}
}

func TestSecretNotInFormattedSettings(t *testing.T) {
	secret := crypto.NewSecretString("super-secret-value")
	formatted := fmt.Sprintf("%v %s %#v", secret, secret, secret)
	if strings.Contains(formatted, "super-secret-value") {
		t.Errorf("secret leaked: %s", formatted)
	}
}
