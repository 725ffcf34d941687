package crypto

import "gopkg.in/yaml.v3"

const redacted = "[REDACTED]"

// SecretString holds a sensitive string that must never leak through
// formatting or serialization. Call Zeroize when done with it.
type SecretString struct {
	value []byte
}

func NewSecretString(s string) SecretString {
	return SecretString{value: []byte(s)}
}

// Expose returns the underlying secret
func (s SecretString) Expose() string { return string(s.value) }

func (s SecretString) IsEmpty() bool { return len(s.value) == 0 }

// Zeroize overwrites the secret bytes in place
func (s *SecretString) Zeroize() {
	for i := range s.value {
		s.value[i] = 0
	}
	s.value = nil
}

// String elides the secret; fmt verbs all route through here
func (s SecretString) String() string { return redacted }

func (s SecretString) GoString() string { return redacted }

func (s SecretString) MarshalYAML() (any, error) { return redacted, nil }

func (s *SecretString) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.value = []byte(raw)
	return nil
}
