package transport

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/vantage-net/vantage/pkg/devicemodel"
)

// loadSigner builds an ssh.Signer from either in-memory key material or a
// key file path, applying the passphrase if one was supplied.
func loadSigner(creds *devicemodel.Credentials) (ssh.Signer, error) {
	var raw []byte
	var err error

	if creds.KeyData != "" {
		raw = []byte(creds.KeyData)
	} else {
		raw, err = os.ReadFile(creds.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", creds.KeyPath, err)
		}
	}

	if creds.KeyPassphrase != "" {
		signer, err := ssh.ParsePrivateKeyWithPassphrase(raw, []byte(creds.KeyPassphrase))
		if err != nil {
			return nil, fmt.Errorf("parse private key (passphrase): %w", err)
		}
		return signer, nil
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return signer, nil
}
