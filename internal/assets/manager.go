package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bds-go/internal/estate"
)

// OSManager is the real filesystem implementation of the AssetManager
// interface. All folders live directly under a single root directory, one
// per record, named {category}_{ordinal}.
type OSManager struct {
	root string
}

var _ estate.AssetManager = (*OSManager)(nil)

// NewOSManager creates a manager rooted at the given directory, creating it
// if absent.
func NewOSManager(root string) (*OSManager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating asset root: %w", err)
	}
	return &OSManager{root: root}, nil
}

// Root returns the asset tree root directory.
func (m *OSManager) Root() string { return m.root }

// CreateFolder builds and creates the folder for a new record.
// The category goes into the folder name as-is apart from path separators,
// which would escape the root.
func (m *OSManager) CreateFolder(category string, ordinal int) (string, error) {
	name := fmt.Sprintf("%s_%d", sanitize(category), ordinal)
	folder := filepath.Join(m.root, name)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}
	return folder, nil
}

// WriteFiles writes each file into the folder, overwriting same-named files
// silently.
func (m *OSManager) WriteFiles(folder string, files []estate.UploadFile) error {
	for _, f := range files {
		dest := filepath.Join(folder, filepath.Base(f.Name))
		if err := os.WriteFile(dest, f.Data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	return nil
}

// ReplaceFiles deletes every existing file in the folder, then writes the
// supplied ones. With no new files the folder is left untouched.
func (m *OSManager) ReplaceFiles(folder string, files []estate.UploadFile) error {
	if len(files) == 0 {
		return nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("reading folder: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(folder, entry.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
	}

	return m.WriteFiles(folder, files)
}

// DeleteFolder recursively removes a folder. An absent folder is not an
// error.
func (m *OSManager) DeleteFolder(folder string) error {
	if err := os.RemoveAll(folder); err != nil {
		return fmt.Errorf("removing folder: %w", err)
	}
	return nil
}

// CopyTo copies every regular file directly inside folder into dest,
// creating dest if absent. Originals are kept.
func (m *OSManager) CopyTo(folder, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading folder: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(folder, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return fmt.Errorf("copying %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// sanitize strips characters from a category that would change the folder
// path shape.
func sanitize(category string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", string(os.PathSeparator), "-", "\x00", "")
	return r.Replace(category)
}
