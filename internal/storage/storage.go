// Package storage persists the dataset as one human-readable yaml file
// per logical key under the klirr data directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Key is a stable logical name for one persisted entity
type Key string

const (
	KeyVendor        Key = "vendor"
	KeyClient        Key = "client"
	KeyPayment       Key = "payment"
	KeyServiceFees   Key = "service_fees"
	KeyInvoiceInfo   Key = "invoice_info"
	KeyExpenses      Key = "expenses"
	KeyEmailSettings Key = "email_settings"
	KeyCachedRates   Key = "cached_rates"
)

// DataKeys are the keys that make up the invoicing dataset, in the order
// `data validate` checks them. The FX cache and email settings live apart.
var DataKeys = []Key{
	KeyVendor, KeyClient, KeyPayment, KeyServiceFees, KeyInvoiceInfo, KeyExpenses,
}

// Store is the persistence capability the core consumes
type Store interface {
	Load(key Key, into any) error
	Save(key Key, v any) error
	Exists(key Key) bool
	Path(key Key) string
}

// FileStore keeps one yaml file per key in a single directory
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Path(key Key) string {
	return filepath.Join(s.dir, string(key)+".yaml")
}

func (s *FileStore) Exists(key Key) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

func (s *FileStore) Load(key Key, into any) error {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Save(key Key, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := os.WriteFile(s.Path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
