package estate

import "io"

// Vault provides an interface for offsite snapshot storage backends.
// All operations use io.Reader/io.Writer for streaming to support large
// archives without loading them entirely into memory.
type Vault interface {
	// PutSnapshot stores a snapshot file under its name (e.g.
	// "20240115_images.zip"). Storing the same name again overwrites it.
	// size is the number of bytes that will be read from r.
	PutSnapshot(name string, r io.Reader, size int64) error

	// GetSnapshot retrieves a snapshot file by name and writes it to w.
	GetSnapshot(name string, w io.Writer) error

	// ListSnapshots returns the names of all stored snapshot files.
	ListSnapshots() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}
