package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/hkdf"
	"gopkg.in/yaml.v3"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
	tagSize   = 16

	// minimum sealed box: nonce + tag + at least one plaintext byte
	minSealedSize = nonceSize + tagSize + 1

	keyDerivationInfo = "klirr email encryption"
)

var (
	// ErrDecryptionFailed is returned when the AES-GCM auth tag does not
	// verify, e.g. on a wrong passphrase or a tampered box.
	ErrDecryptionFailed = errors.New("AES decryption failed")

	// ErrCiphertextTooShort is returned when a sealed box is shorter than
	// nonce + tag + one byte.
	ErrCiphertextTooShort = errors.New("sealed box too short")

	// ErrInvalidUTF8 is returned when a decrypted secret is not valid UTF-8
	ErrInvalidUTF8 = errors.New("decrypted secret is not valid UTF-8")
)

// Salt is the per-installation random salt for key derivation
type Salt [saltSize]byte

func NewSalt() (Salt, error) {
	var s Salt
	if _, err := io.ReadFull(rand.Reader, s[:]); err != nil {
		return Salt{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	return s, nil
}

func (s Salt) MarshalYAML() (any, error) {
	return hex.EncodeToString(s[:]), nil
}

func (s *Salt) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("invalid salt hex: %w", err)
	}
	if len(decoded) != saltSize {
		return fmt.Errorf("salt must be %d bytes, got %d", saltSize, len(decoded))
	}
	copy(s[:], decoded)
	return nil
}

// SymmetricKey is a derived AES-256 key
type SymmetricKey [keySize]byte

// DeriveKey stretches a passphrase into an AES-256 key with HKDF-SHA256
func DeriveKey(passphrase SecretString, salt Salt) SymmetricKey {
	reader := hkdf.New(sha256.New, []byte(passphrase.Expose()), salt[:], []byte(keyDerivationInfo))
	var key SymmetricKey
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		// hkdf only fails when asked for more than 255 blocks
		panic(fmt.Sprintf("hkdf expand failed: %v", err))
	}
	return key
}

// Zeroize overwrites the key material
func (k *SymmetricKey) Zeroize() {
	for i := range k {
		k[i] = 0
	}
}

// SealedBox is AES-256-GCM ciphertext stored as nonce || ciphertext || tag
type SealedBox []byte

// Seal encrypts a secret under the key with a fresh random nonce
func Seal(plaintext SecretString, key SymmetricKey) (SealedBox, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, []byte(plaintext.Expose()), nil), nil
}

// Open decrypts a sealed box and checks the plaintext is UTF-8
func Open(box SealedBox, key SymmetricKey) (SecretString, error) {
	if len(box) < minSealedSize {
		return SecretString{}, fmt.Errorf("%w: %d bytes", ErrCiphertextTooShort, len(box))
	}
	gcm, err := newGCM(key)
	if err != nil {
		return SecretString{}, err
	}
	plaintext, err := gcm.Open(nil, box[:nonceSize], box[nonceSize:], nil)
	if err != nil {
		return SecretString{}, ErrDecryptionFailed
	}
	if !utf8.Valid(plaintext) {
		return SecretString{}, ErrInvalidUTF8
	}
	return SecretString{value: plaintext}, nil
}

func newGCM(key SymmetricKey) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (b SealedBox) MarshalYAML() (any, error) {
	return hex.EncodeToString(b), nil
}

func (b *SealedBox) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("invalid sealed box hex: %w", err)
	}
	*b = decoded
	return nil
}
