package testutil

import (
	"bds-go/internal/estate"
	"bds-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() estate.Vault {
	return vault.NewMemoryVault("test-vault")
}
