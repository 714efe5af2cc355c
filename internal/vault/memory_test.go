package vault_test

import (
	"bytes"
	"testing"

	"bds-go/internal/vault"
)

func TestMemoryVault(t *testing.T) {
	t.Run("put then get round-trips", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

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

	t.Run("size mismatch rejects the write", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		data := []byte("short")
		if err := v.PutSnapshot("a.csv", bytes.NewReader(data), 999); err == nil {
			t.Error("PutSnapshot() with wrong size succeeded, want error")
		}
		if names, _ := v.ListSnapshots(); len(names) != 0 {
			t.Errorf("ListSnapshots() = %v, want none after failed put", names)
		}
	})

	t.Run("list is sorted", func(t *testing.T) {
		v := vault.NewMemoryVault("test")

		for _, name := range []string{"b.zip", "a.csv"} {
			data := []byte(name)
			if err := v.PutSnapshot(name, bytes.NewReader(data), int64(len(data))); err != nil {
				t.Fatal(err)
			}
		}

		names, err := v.ListSnapshots()
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 2 || names[0] != "a.csv" || names[1] != "b.zip" {
			t.Errorf("ListSnapshots() = %v, want [a.csv b.zip]", names)
		}
	})
}
