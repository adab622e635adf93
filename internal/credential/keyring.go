// Package credential resolves account secrets, preferring the OS
// keyring over passwords written into the config file.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/mailscope/internal/model"
)

const serviceName = "mailscope"

// imapKey is the keyring entry name for an account's IMAP password.
func imapKey(account string) string {
	return "imap-password:" + account
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailscope/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailscope-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// IMAPPassword returns the IMAP password for an account: the inline
// config value when present, otherwise the keyring entry stored under
// the account name.
func IMAPPassword(account model.AccountConfig) (string, error) {
	if account.IMAP.Password != "" {
		return account.IMAP.Password, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(imapKey(account.Name))
	if err != nil {
		return "", fmt.Errorf(
			"no password configured for account %s and keyring lookup failed: %w",
			account.Name, err,
		)
	}

	return string(item.Data), nil
}

// SetIMAPPassword stores an account's IMAP password in the keyring.
func SetIMAPPassword(account string, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  imapKey(account),
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("storing password for %s: %w", account, err)
	}

	return nil
}

// DeleteIMAPPassword removes an account's IMAP password from the keyring.
func DeleteIMAPPassword(account string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(imapKey(account))
	if err != nil {
		return fmt.Errorf("deleting password for %s: %w", account, err)
	}

	return nil
}
