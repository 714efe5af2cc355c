package estate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// summaryFile is the human-readable summary written into each share folder.
const summaryFile = "info.txt"

// ShareRecord exports one record into a dedicated folder under the share
// directory: a plain-text summary plus copies of the record's images. The
// share folder is named after the record's asset folder and is never read
// back by the application. Returns the share folder path.
func (s *Service) ShareRecord(id string) (string, error) {
	l := s.store.FindByID(id)
	if l == nil {
		return "", &NotFoundError{ID: id}
	}

	dest := filepath.Join(s.shareDir, filepath.Base(l.FolderPath))
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", fmt.Errorf("creating share folder: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", l.Category)
	fmt.Fprintf(&b, "Project: %s\n", l.Project)
	fmt.Fprintf(&b, "Price: %s\n", strconv.FormatFloat(l.Price, 'f', -1, 64))
	if l.HasArea() {
		fmt.Fprintf(&b, "Area: %s m2\n", strconv.FormatFloat(*l.Area, 'f', -1, 64))
	}
	if l.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	}
	if l.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", l.Status)
	}
	fmt.Fprintf(&b, "Notice: %s\n", l.Notice)

	if err := os.WriteFile(filepath.Join(dest, summaryFile), []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}

	if err := s.assets.CopyTo(l.FolderPath, dest); err != nil {
		return "", fmt.Errorf("copying images: %w", err)
	}

	s.logger.Info("record shared", "id", id, "folder", dest)
	return dest, nil
}
