package backup

import (
	"bytes"
	"fmt"
	"os"

	"bds-go/internal/estate"
)

// encryptedSuffix marks age-encrypted snapshot copies in a vault.
const encryptedSuffix = ".age"

// mirror uploads both files of a snapshot pair to a vault. When the
// encryptor is set up, each file is encrypted first and stored under its
// name plus the ".age" suffix.
func (m *Manager) mirror(v estate.Vault, pair *estate.SnapshotPair) error {
	for _, path := range []string{pair.TablePath, pair.ArchivePath} {
		if err := m.mirrorOne(v, path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) mirrorOne(v estate.Vault, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if m.encryptor != nil && m.encryptor.IsConfigured() {
		var cipher bytes.Buffer
		if err := m.encryptor.Encrypt(f, &cipher); err != nil {
			return fmt.Errorf("encrypting snapshot: %w", err)
		}
		return v.PutSnapshot(info.Name()+encryptedSuffix, &cipher, int64(cipher.Len()))
	}

	return v.PutSnapshot(info.Name(), f, info.Size())
}
