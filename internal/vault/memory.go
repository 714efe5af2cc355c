package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"bds-go/internal/estate"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It stores all snapshots in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string][]byte // name -> content
	mu        sync.RWMutex
}

var _ estate.Vault = (*MemoryVault)(nil)

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
	}
}

// PutSnapshot stores a snapshot under its name. Storing the same name again
// overwrites the previous copy.
func (m *MemoryVault) PutSnapshot(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[name] = data
	return nil
}

// GetSnapshot retrieves a snapshot by name.
func (m *MemoryVault) GetSnapshot(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[name]
	if !ok {
		return fmt.Errorf("snapshot not found: %s", name)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the names of all stored snapshots, sorted.
func (m *MemoryVault) ListSnapshots() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.snapshots))
	for name := range m.snapshots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup always succeeds for the in-memory vault.
func (m *MemoryVault) ValidateSetup() error { return nil }
