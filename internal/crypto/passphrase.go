package crypto

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	// EnvPassphrase supplies the email encryption passphrase
	// non-interactively when set to 4+ characters.
	EnvPassphrase = "KLIRR_EMAIL_ENCRYPTION_PASSWORD"

	minPassphraseLen = 4

	keyringService = "klirr"
	keyringKey     = "email-encryption-passphrase"
)

var ErrPassphraseTooShort = fmt.Errorf("passphrase must be at least %d characters", minPassphraseLen)

// ResolvePassphrase finds the email encryption passphrase, in order: the
// environment variable, the system keyring, an interactive prompt.
func ResolvePassphrase() (SecretString, error) {
	if raw := os.Getenv(EnvPassphrase); len(raw) >= minPassphraseLen {
		return NewSecretString(raw), nil
	}
	if stored, err := keyring.Get(keyringService, keyringKey); err == nil && stored != "" {
		return NewSecretString(stored), nil
	}
	return PromptPassphrase(false)
}

// StorePassphraseInKeyring saves the passphrase in the system keyring so
// later runs skip the prompt
func StorePassphraseInKeyring(passphrase SecretString) error {
	return keyring.Set(keyringService, keyringKey, passphrase.Expose())
}

// DeletePassphraseFromKeyring removes the stored passphrase. A missing
// entry is not an error.
func DeletePassphraseFromKeyring() error {
	err := keyring.Delete(keyringService, keyringKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// PromptPassphrase reads the passphrase from the terminal without echo.
// With confirm set it asks twice and requires both entries to match.
func PromptPassphrase(confirm bool) (SecretString, error) {
	fmt.Fprint(os.Stderr, "Enter email encryption passphrase: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return SecretString{}, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(first) < minPassphraseLen {
		return SecretString{}, ErrPassphraseTooShort
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		second, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return SecretString{}, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if string(first) != string(second) {
			return SecretString{}, errors.New("passphrases do not match")
		}
		for i := range second {
			second[i] = 0
		}
	}
	return SecretString{value: first}, nil
}
