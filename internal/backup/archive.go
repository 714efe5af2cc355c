package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WriteArchive writes a deflate-compressed zip of every file under root to w.
// Entry names are relative to root so the archive can be extracted into any
// asset root.
func WriteArchive(w io.Writer, root string) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("computing entry name: %w", err)
		}

		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", rel, err)
		}

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		defer f.Close()

		if _, err := io.Copy(entry, f); err != nil {
			return fmt.Errorf("writing entry %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// ExtractArchive extracts every entry of zr into dest. Entry names that would
// escape dest are rejected.
func ExtractArchive(zr *zip.Reader, dest string) error {
	for _, entry := range zr.File {
		name := filepath.FromSlash(entry.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry escapes destination: %s", entry.Name)
		}
		target := filepath.Join(dest, name)

		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", entry.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", entry.Name, err)
		}

		if err := extractOne(entry, target); err != nil {
			return fmt.Errorf("extracting %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extractOne(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
