package encryption

import (
	"bytes"
	"fmt"
	"io"

	"bds-go/internal/estate"
)

// testHeader is prepended to data by TestEncryptor to make encrypted output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("BDSENC\x00\x00")

// TestEncryptor is a simple, deterministic encryptor for testing.
// It prepends a fixed 8-byte header during encryption and strips it during
// decryption. This ensures encrypted output differs from plaintext while
// being trivially reversible and requiring no crypto.
type TestEncryptor struct {
	setupCalled bool
}

var _ estate.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.setupCalled = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (estate.DecryptionContext, error) {
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

// TestDecryptionContext strips the test header during decryption.
type TestDecryptionContext struct{}

var _ estate.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading data: %w", err)
	}
	if !bytes.HasPrefix(data, testHeader) {
		return fmt.Errorf("data is not test-encrypted")
	}
	if _, err := w.Write(data[len(testHeader):]); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}
