// SPDX-License-Identifier: GPL-3.0-or-later
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "go-imap-archiver"

var ErrNotFound = errors.New("no password stored")

// Store keeps IMAP passwords keyed by user name.
type Store struct {
	ring keyring.Keyring
}

func Open() (*Store, error) {
	dir := filepath.Join(".", ".credentials")
	if home, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(home, serviceName, "credentials")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.TerminalPrompt,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func (s *Store) Password(user string) (string, error) {
	item, err := s.ring.Get(user)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w for %q, run login first", ErrNotFound, user)
	}
	if err != nil {
		return "", fmt.Errorf("getting password for %q: %w", user, err)
	}
	return string(item.Data), nil
}

func (s *Store) SetPassword(user, password string) error {
	err := s.ring.Set(keyring.Item{
		Key:         user,
		Data:        []byte(password),
		Label:       serviceName + " " + user,
		Description: "IMAP password",
	})
	if err != nil {
		return fmt.Errorf("setting password for %q: %w", user, err)
	}
	return nil
}

func (s *Store) DeletePassword(user string) error {
	err := s.ring.Remove(user)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting password for %q: %w", user, err)
	}
	return nil
}
