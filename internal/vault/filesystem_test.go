package vault_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bds-go/internal/vault"
)

func TestFileSystemVault(t *testing.T) {
	t.Run("put then get round-trips", func(t *testing.T) {
		v, err := vault.NewFileSystemVault("offsite", t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}

		data := []byte("snapshot contents")
		if err := v.PutSnapshot("20240115_backup.csv", bytes.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var out bytes.Buffer
		if err := v.GetSnapshot("20240115_backup.csv", &out); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if !bytes.Equal(out.Bytes(), data) {
			t.Errorf("GetSnapshot() = %q, want %q", out.Bytes(), data)
		}
	})

	t.Run("put with the same name overwrites", func(t *testing.T) {
		v, err := vault.NewFileSystemVault("offsite", t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		first := []byte("first")
		if err := v.PutSnapshot("a.csv", bytes.NewReader(first), int64(len(first))); err != nil {
			t.Fatal(err)
		}
		second := []byte("second version")
		if err := v.PutSnapshot("a.csv", bytes.NewReader(second), int64(len(second))); err != nil {
			t.Fatal(err)
		}

		var out bytes.Buffer
		if err := v.GetSnapshot("a.csv", &out); err != nil {
			t.Fatal(err)
		}
		if out.String() != "second version" {
			t.Errorf("GetSnapshot() = %q, want the second version", out.String())
		}
	})

	t.Run("size mismatch rejects the write and leaves no file", func(t *testing.T) {
		root := t.TempDir()
		v, err := vault.NewFileSystemVault("offsite", root)
		if err != nil {
			t.Fatal(err)
		}

		data := []byte("short")
		if err := v.PutSnapshot("a.csv", bytes.NewReader(data), 999); err == nil {
			t.Fatal("PutSnapshot() with wrong size succeeded, want error")
		}

		entries, err := os.ReadDir(filepath.Join(root, "snapshots"))
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".tmp-") || e.Name() == "a.csv" {
				t.Errorf("unexpected file %s after failed put", e.Name())
			}
		}
	})

	t.Run("get of a missing snapshot fails", func(t *testing.T) {
		v, err := vault.NewFileSystemVault("offsite", t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		var out bytes.Buffer
		if err := v.GetSnapshot("missing.csv", &out); err == nil {
			t.Error("GetSnapshot(missing) succeeded, want error")
		}
	})

	t.Run("list returns stored names", func(t *testing.T) {
		v, err := vault.NewFileSystemVault("offsite", t.TempDir())
		if err != nil {
			t.Fatal(err)
		}

		for _, name := range []string{"20240115_backup.csv", "20240115_images.zip"} {
			data := []byte(name)
			if err := v.PutSnapshot(name, bytes.NewReader(data), int64(len(data))); err != nil {
				t.Fatal(err)
			}
		}

		names, err := v.ListSnapshots()
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if len(names) != 2 {
			t.Errorf("ListSnapshots() = %v, want 2 names", names)
		}
	})

	t.Run("validate setup checks the directories", func(t *testing.T) {
		root := t.TempDir()
		v, err := vault.NewFileSystemVault("offsite", root)
		if err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}

		if err := os.RemoveAll(filepath.Join(root, "snapshots")); err != nil {
			t.Fatal(err)
		}
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() after removing snapshots dir succeeded, want error")
		}
	})
}
