package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bds-go/internal/estate"
)

// FileSystemVault is a filesystem-based implementation of the Vault
// interface, for mirroring snapshot pairs to a second disk or a mounted
// network share. Snapshots are stored flat under:
//
//	<root>/
//	  snapshots/
//	    20240115_backup.csv
//	    20240115_images.zip
type FileSystemVault struct {
	name        string
	root        string
	snapshotDir string
}

var _ estate.Vault = (*FileSystemVault)(nil)

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &FileSystemVault{
		name:        name,
		root:        root,
		snapshotDir: snapshotDir,
	}, nil
}

// PutSnapshot stores a snapshot file under its name, overwriting any
// previous copy with the same name.
func (v *FileSystemVault) PutSnapshot(name string, r io.Reader, size int64) error {
	return v.writeFile(filepath.Join(v.snapshotDir, filepath.Base(name)), r, size)
}

// GetSnapshot retrieves a snapshot file by name and writes it to w.
func (v *FileSystemVault) GetSnapshot(name string, w io.Writer) error {
	srcPath := filepath.Join(v.snapshotDir, filepath.Base(name))
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snapshot not found: %s", name)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the names of all stored snapshot files.
func (v *FileSystemVault) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(v.snapshotDir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write
// (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
