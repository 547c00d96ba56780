package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "foodcritic-cli"
)

// getKeyringKey returns a unique key for a session entry per API server
func getKeyringKey(server, key string) string {
	return fmt.Sprintf("%s-%s", key, server)
}

// KeyringStorage persists session entries in the OS keychain/credential manager
type KeyringStorage struct {
	server string
}

// NewKeyringStorage returns a storage scoped to one API server
func NewKeyringStorage(server string) *KeyringStorage {
	return &KeyringStorage{server: server}
}

// Get retrieves an entry from the OS keychain/credential manager
func (k *KeyringStorage) Get(key string) (string, bool, error) {
	value, err := keyring.Get(service, getKeyringKey(k.server, key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

// Set persists an entry securely in the OS keychain/credential manager
func (k *KeyringStorage) Set(key, value string) error {
	if err := keyring.Set(service, getKeyringKey(k.server, key), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry from the OS keychain/credential manager
func (k *KeyringStorage) Delete(key string) error {
	if err := keyring.Delete(service, getKeyringKey(k.server, key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
