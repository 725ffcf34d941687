package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	key := DeriveKey(NewSecretString("correct horse battery staple"), salt)

	for _, plaintext := range []string{"a", "app-password", "åäö snöflinga"} {
		sealed, err := Seal(NewSecretString(plaintext), key)
		if err != nil {
			t.Fatal(err)
		}
		if len(sealed) < minSealedSize {
			t.Fatalf("sealed box too small: %d", len(sealed))
		}
		opened, err := Open(sealed, key)
		if err != nil {
			t.Fatalf("open %q: %v", plaintext, err)
		}
		if opened.Expose() != plaintext {
			t.Errorf("round trip lost %q", plaintext)
		}
	}
}

func TestOpenTamperedBox(t *testing.T) {
	salt, _ := NewSalt()
	key := DeriveKey(NewSecretString("passphrase"), salt)
	sealed, err := Seal(NewSecretString("secret"), key)
	if err != nil {
		t.Fatal(err)
	}
	// flip one bit in the ciphertext
	tampered := make(SealedBox, len(sealed))
	copy(tampered, sealed)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := Open(tampered, key); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("want ErrDecryptionFailed, got %v", err)
	}
}

func TestOpenTooShort(t *testing.T) {
	salt, _ := NewSalt()
	key := DeriveKey(NewSecretString("passphrase"), salt)
	short := make(SealedBox, minSealedSize-1)
	if _, err := Open(short, key); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("want ErrCiphertextTooShort, got %v", err)
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	salt, _ := NewSalt()
	key := DeriveKey(NewSecretString("passphrase"), salt)
	a, _ := Seal(NewSecretString("secret"), key)
	b, _ := Seal(NewSecretString("secret"), key)
	if bytes.Equal(a, b) {
		t.Error("two seals of the same plaintext produced identical boxes")
	}
}

func TestDistinctSaltsDeriveDistinctKeys(t *testing.T) {
	passphrase := NewSecretString("same passphrase")
	saltA, _ := NewSalt()
	saltB, _ := NewSalt()
	if saltA == saltB {
		t.Fatal("two random salts collided")
	}
	keyA := DeriveKey(passphrase, saltA)
	keyB := DeriveKey(passphrase, saltB)
	if keyA == keyB {
		t.Error("distinct salts derived the same key")
	}
}

func TestZeroize(t *testing.T) {
	secret := NewSecretString("sensitive")
	secret.Zeroize()
	if !secret.IsEmpty() {
		t.Error("secret not cleared")
	}

	salt, _ := NewSalt()
	key := DeriveKey(NewSecretString("p"), salt)
	key.Zeroize()
	if key != (SymmetricKey{}) {
		t.Error("key not cleared")
	}
}
